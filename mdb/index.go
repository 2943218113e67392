package mdb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type IndexDescription struct {
	unique bool
	keys   []string
}

// NewIndexDescription creates a new index description.
func NewIndexDescription(unique bool, keys ...string) *IndexDescription {
	return &IndexDescription{
		unique: unique,
		keys:   keys,
	}
}

func (id *IndexDescription) AsBSON() bson.D {
	asBSON := bson.D{}
	for _, key := range id.keys {
		asBSON = append(asBSON, bson.E{Key: key, Value: 1})
	}
	return asBSON
}

// Finisher returns a function that can be used as a CollectionFinisher for creating this index.
func (id *IndexDescription) Finisher() CollectionFinisher {
	return func(ctx context.Context, access *Access, collection *Collection) error {
		return access.Index(ctx, collection, id)
	}
}

// Index creates the described index on the collection.
// Creating an index that already exists with the same options is not an error.
func (a *Access) Index(ctx context.Context, collection *Collection, description *IndexDescription) error {
	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout.Index)
	defer cancel()
	name, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    description.AsBSON(),
		Options: options.Index().SetUnique(description.unique),
	})
	if err != nil {
		return fmt.Errorf("create index on %v: %w", description.keys, err)
	}

	a.Logger().Info().Str("collection", collection.Name()).Str("index", name).Msg("Created index")

	return nil
}
