package circulation

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/madkins23/go-circulation/mdb"
	"github.com/madkins23/go-circulation/mdbid"
)

const (
	// DefaultDatabase is the database name used when none is configured.
	DefaultDatabase = "circulation"
	// DefaultCollection is the collection name used when none is configured.
	DefaultCollection = "newspapers"
)

// Config for a Repository.
type Config struct {
	// Database name.
	Database string
	// Collection name within the database.
	Collection string
	// Connection settings passed to mdb.Connect for every operation.
	Access *mdb.Config
}

// LoadResult reports the outcome of a bulk load.
type LoadResult struct {
	Count int
	IDs   []primitive.ObjectID
}

// Repository provides the circulation record operations against a single collection.
// Every operation opens its own connection and releases it before returning.
type Repository struct {
	config Config
}

// NewRepository returns a repository using the specified configuration.
// Empty database and collection names are replaced with the defaults.
func NewRepository(config Config) *Repository {
	if config.Database == "" {
		config.Database = DefaultDatabase
	}
	if config.Collection == "" {
		config.Collection = DefaultCollection
	}
	return &Repository{config: config}
}

// Config returns the repository configuration.
func (r *Repository) Config() Config {
	return r.config
}

// NewspaperIndex is created on the collection when the dataset is loaded.
var NewspaperIndex = mdb.NewIndexDescription(false, KeyNewspaper)

// ByNewspaper returns an equality filter on the newspaper name.
func ByNewspaper(name string) bson.D {
	return bson.D{{Key: KeyNewspaper, Value: name}}
}

// connect opens a dedicated connection, runs fn and always disconnects.
// A disconnect failure is only reported if fn succeeded.
func (r *Repository) connect(ctx context.Context, fn func(access *mdb.Access) error) (err error) {
	access, err := mdb.Connect(ctx, r.config.Database, r.config.Access)
	if err != nil {
		return err
	}
	defer func() {
		if dErr := access.Disconnect(ctx); dErr != nil && err == nil {
			err = dErr
		}
	}()

	return fn(access)
}

// records connects and runs fn against the typed record collection.
func (r *Repository) records(ctx context.Context, fn func(records *mdb.TypedCollection[Record]) error) error {
	return r.connect(ctx, func(access *mdb.Access) error {
		collection, err := access.Collection(r.config.Collection)
		if err != nil {
			return err
		}
		return fn(mdb.NewTypedCollection[Record](collection))
	})
}

// LoadData inserts all records in a single bulk request.
// Each record is assigned the identifier generated for it.
func (r *Repository) LoadData(ctx context.Context, records []*Record) (*LoadResult, error) {
	items := make([]interface{}, len(records))
	for i, record := range records {
		items[i] = record
	}

	result := &LoadResult{}
	err := r.connect(ctx, func(access *mdb.Access) error {
		collection, err := access.EnsureCollection(ctx, r.config.Collection, NewspaperIndex.Finisher())
		if err != nil {
			return err
		}
		inserted, err := collection.CreateMany(ctx, items)
		if err != nil {
			return err
		}
		result.IDs = make([]primitive.ObjectID, len(inserted))
		for i, id := range inserted {
			if result.IDs[i], err = mdbid.FromInserted(id); err != nil {
				return err
			}
			records[i].SetID(result.IDs[i])
		}
		result.Count = len(inserted)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}

	return result, nil
}

// Get returns the records matching the equality filter, all records if the filter is empty.
// A positive limit caps the number of records returned.
func (r *Repository) Get(ctx context.Context, filter bson.D, limit int64) ([]*Record, error) {
	var found []*Record
	err := r.records(ctx, func(records *mdb.TypedCollection[Record]) error {
		var err error
		found, err = records.FindAll(ctx, filter, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get records: %w", err)
	}

	return found, nil
}

// GetByID returns the record with the specified hex identifier.
// Returns nil without error if there is no such record.
func (r *Repository) GetByID(ctx context.Context, id string) (*Record, error) {
	oid, err := mdbid.Parse(id)
	if err != nil {
		return nil, err
	}

	var found *Record
	err = r.records(ctx, func(records *mdb.TypedCollection[Record]) error {
		var err error
		found, err = records.Find(ctx, mdbid.FilterFor(oid))
		return err
	})
	if mdb.IsNotFound(err) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("get record %s: %w", id, err)
	}

	return found, nil
}

// Add inserts a single record and returns the identifier assigned to it.
// The record's own identifier is set as well.
func (r *Repository) Add(ctx context.Context, record *Record) (primitive.ObjectID, error) {
	var oid primitive.ObjectID
	err := r.records(ctx, func(records *mdb.TypedCollection[Record]) error {
		inserted, err := records.Create(ctx, record)
		if err != nil {
			return err
		}
		oid, err = mdbid.FromInserted(inserted)
		return err
	})
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("add record: %w", err)
	}

	record.SetID(oid)
	return oid, nil
}

// Update replaces the entire record with the specified hex identifier.
// Any identifier on the new record is ignored, the stored identifier never changes.
// Returns the record as stored after replacement, or nil without error if there is no such record.
func (r *Repository) Update(ctx context.Context, id string, record *Record) (*Record, error) {
	oid, err := mdbid.Parse(id)
	if err != nil {
		return nil, err
	}

	var replaced *Record
	err = r.records(ctx, func(records *mdb.TypedCollection[Record]) error {
		var err error
		replaced, err = records.Replace(ctx, mdbid.FilterFor(oid), record.Fields())
		return err
	})
	if mdb.IsNotFound(err) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("update record %s: %w", id, err)
	}

	return replaced, nil
}

// RemoveByID deletes the record with the specified hex identifier.
// Returns true if exactly one record was removed.
func (r *Repository) RemoveByID(ctx context.Context, id string) (bool, error) {
	oid, err := mdbid.Parse(id)
	if err != nil {
		return false, err
	}

	var deleted int64
	err = r.records(ctx, func(records *mdb.TypedCollection[Record]) error {
		var err error
		deleted, err = records.Delete(ctx, mdbid.FilterFor(oid))
		return err
	})
	if err != nil {
		return false, fmt.Errorf("remove record %s: %w", id, err)
	}

	return deleted == 1, nil
}

// Count returns the number of records matching the equality filter.
func (r *Repository) Count(ctx context.Context, filter bson.D) (int64, error) {
	var count int64
	err := r.records(ctx, func(records *mdb.TypedCollection[Record]) error {
		var err error
		count, err = records.Count(ctx, filter)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}

	return count, nil
}

// AverageFinalists returns the mean 1990-2014 Pulitzer finalists over all records.
// The result has a single element with a nil group, or none if the collection is empty.
func (r *Repository) AverageFinalists(ctx context.Context) ([]*FinalistsAverage, error) {
	return r.aggregate(ctx, "average finalists", averageFinalistsPipeline())
}

// AverageFinalistsByChange returns the mean 1990-2014 Pulitzer finalists for records
// with a non-negative 2004-2013 circulation change ("positive") and a negative one ("negative").
// Buckets with no records are absent.
func (r *Repository) AverageFinalistsByChange(ctx context.Context) ([]*FinalistsAverage, error) {
	return r.aggregate(ctx, "average finalists by change", averageFinalistsByChangePipeline())
}

func (r *Repository) aggregate(ctx context.Context, name string, pipeline mongo.Pipeline) ([]*FinalistsAverage, error) {
	var results []*FinalistsAverage
	err := r.records(ctx, func(records *mdb.TypedCollection[Record]) error {
		var err error
		results, err = mdb.Aggregate[FinalistsAverage](ctx, &records.Collection, pipeline)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return results, nil
}

// Drop removes the entire database.
func (r *Repository) Drop(ctx context.Context) error {
	return r.connect(ctx, func(access *mdb.Access) error {
		return access.DropDatabase(ctx)
	})
}
