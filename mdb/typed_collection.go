package mdb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TypedCollection decodes objects returned from Mongo into the collection's item type.
type TypedCollection[T any] struct {
	Collection
}

func NewTypedCollection[T any](collection *Collection) *TypedCollection[T] {
	return &TypedCollection[T]{
		Collection: *collection,
	}
}

// Find an item in the database.
// Returns an error matching IsNotFound() if there is no such item.
func (c *TypedCollection[T]) Find(ctx context.Context, filter bson.D) (*T, error) {
	ctx, cancel := c.RequestContext(ctx)
	defer cancel()
	item := new(T)
	if err := c.FindOne(ctx, filter).Decode(item); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("no item '%v': %w", filter, err)
		}
		return nil, fmt.Errorf("find item '%v': %w", filter, err)
	}

	return item, nil
}

// FindAll items matching the filter.
// A limit less than one returns all matching items.
func (c *TypedCollection[T]) FindAll(ctx context.Context, filter bson.D, limit int64) ([]*T, error) {
	items := make([]*T, 0)
	err := c.Iterate(ctx, filter, limit, func(item *T) error {
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

// Iterate over a set of items, applying the specified function to each one.
// Each call to the function receives a newly allocated item.
func (c *TypedCollection[T]) Iterate(ctx context.Context, filter bson.D, limit int64, fn func(item *T) error) error {
	if filter == nil {
		filter = NoFilter()
	}
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}

	ctx, cancel := c.RequestContext(ctx)
	defer cancel()
	cursor, err := c.Collection.Collection.Find(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("find items: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	for cursor.Next(ctx) {
		item := new(T)
		if err := cursor.Decode(item); err != nil {
			return fmt.Errorf("decode item: %w", err)
		}
		if err := fn(item); err != nil {
			return fmt.Errorf("apply function: %w", err)
		}
	}

	if err := cursor.Err(); err != nil {
		return fmt.Errorf("iterate items: %w", err)
	}

	return nil
}

// Replace the entire item referenced by filter, returning the item as stored afterwards.
// Fields not present in the new item are removed, the _id is preserved.
// Returns an error matching IsNotFound() if the filter matches nothing.
func (c *TypedCollection[T]) Replace(ctx context.Context, filter bson.D, item interface{}) (*T, error) {
	ctx, cancel := c.RequestContext(ctx)
	defer cancel()
	replaced := new(T)
	opts := options.FindOneAndReplace().SetReturnDocument(options.After)
	if err := c.FindOneAndReplace(ctx, filter, item, opts).Decode(replaced); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("no item '%v': %w", filter, err)
		}
		return nil, fmt.Errorf("replace item '%v': %w", filter, err)
	}

	return replaced, nil
}

// Aggregate runs the pipeline against the collection and decodes each result document.
// Go doesn't support generic methods so this can't be a method on Collection.
func Aggregate[R any](ctx context.Context, collection *Collection, pipeline mongo.Pipeline) ([]*R, error) {
	ctx, cancel := collection.RequestContext(ctx)
	defer cancel()
	cursor, err := collection.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	results := make([]*R, 0)
	for cursor.Next(ctx) {
		result := new(R)
		if err := cursor.Decode(result); err != nil {
			return nil, fmt.Errorf("decode aggregate result: %w", err)
		}
		results = append(results, result)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate aggregate results: %w", err)
	}

	return results, nil
}
