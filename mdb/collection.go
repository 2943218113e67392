package mdb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Collection struct {
	*Access
	*mongo.Collection
}

// Count documents in collection matching filter.
func (c *Collection) Count(ctx context.Context, filter bson.D) (int64, error) {
	if filter == nil {
		filter = NoFilter()
	}
	ctx, cancel := c.RequestContext(ctx)
	defer cancel()
	count, err := c.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}

	return count, nil
}

// Create item in DB, returning the identifier assigned by the driver.
func (c *Collection) Create(ctx context.Context, item interface{}) (interface{}, error) {
	ctx, cancel := c.RequestContext(ctx)
	defer cancel()
	result, err := c.InsertOne(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}

	return result.InsertedID, nil
}

var errNoItems = errors.New("no items to insert")

// CreateMany inserts all items in a single request.
// The returned identifiers are in the same order as the items.
func (c *Collection) CreateMany(ctx context.Context, items []interface{}) ([]interface{}, error) {
	if len(items) == 0 {
		return nil, errNoItems
	}

	ctx, cancel := c.RequestContext(ctx)
	defer cancel()
	result, err := c.InsertMany(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("insert items: %w", err)
	}

	return result.InsertedIDs, nil
}

// Delete item from DB.
// Returns the number of items deleted, which is zero if nothing matched.
func (c *Collection) Delete(ctx context.Context, filter bson.D) (int64, error) {
	ctx, cancel := c.RequestContext(ctx)
	defer cancel()
	result, err := c.DeleteOne(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete item: %w", err)
	}
	if result.DeletedCount > 1 {
		// DeleteOne should never remove more than one item.
		return result.DeletedCount, fmt.Errorf("deleted %d items", result.DeletedCount)
	}

	return result.DeletedCount, nil
}

// DeleteAll items from this collection.
func (c *Collection) DeleteAll(ctx context.Context) error {
	ctx, cancel := c.RequestContext(ctx)
	defer cancel()
	if _, err := c.DeleteMany(ctx, NoFilter()); err != nil {
		return fmt.Errorf("delete all: %w", err)
	}
	return nil
}

// Drop collection.
func (c *Collection) Drop(ctx context.Context) error {
	ctx, cancel := c.RequestContext(ctx)
	defer cancel()
	if err := c.Collection.Drop(ctx); err != nil {
		return fmt.Errorf("drop collection %s: %w", c.Name(), err)
	}
	return nil
}

////////////////////////////////////////////////////////////////////////////////

// NoFilter returns an empty bson.D object for use as an empty filter.
func NoFilter() bson.D {
	return bson.D{}
}
