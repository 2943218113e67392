// Package smoke runs a scripted end-to-end check of a circulation store.
//
// The script loads a dataset, exercises every read and write operation,
// checks each result and finishes with both finalist aggregations.
// The database is dropped afterwards whether or not the script succeeded.
package smoke

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/madkins23/go-circulation/circulation"
)

// Store is the set of circulation operations exercised by the script.
// It is implemented by *circulation.Repository.
type Store interface {
	LoadData(ctx context.Context, records []*circulation.Record) (*circulation.LoadResult, error)
	Get(ctx context.Context, filter bson.D, limit int64) ([]*circulation.Record, error)
	GetByID(ctx context.Context, id string) (*circulation.Record, error)
	Add(ctx context.Context, record *circulation.Record) (primitive.ObjectID, error)
	Update(ctx context.Context, id string, record *circulation.Record) (*circulation.Record, error)
	RemoveByID(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context, filter bson.D) (int64, error)
	AverageFinalists(ctx context.Context) ([]*circulation.FinalistsAverage, error)
	AverageFinalistsByChange(ctx context.Context) ([]*circulation.FinalistsAverage, error)
	Drop(ctx context.Context) error
}

var _ Store = &circulation.Repository{}

const (
	// ProbeIndex is the position in the dataset of the record used for filter and ID lookups.
	ProbeIndex = 4
	// ProbeLimit is the limit used to check result truncation.
	ProbeLimit = 3

	newItemName     = "My paper"
	updatedItemName = "My New paper"
)

var errDatasetTooSmall = fmt.Errorf("dataset needs more than %d records", ProbeIndex)

// Report holds the aggregation results of a successful run.
type Report struct {
	Loaded           int
	AverageFinalists []*circulation.FinalistsAverage
	AverageByChange  []*circulation.FinalistsAverage
}

// Runner runs the script against a store.
type Runner struct {
	store  Store
	logger zerolog.Logger
}

// NewRunner returns a runner for the store using the specified logger.
func NewRunner(store Store, logger zerolog.Logger) *Runner {
	return &Runner{store: store, logger: logger}
}

// Run the script and then drop the database.
// Failures are logged here and also returned to the caller.
func (r *Runner) Run(ctx context.Context, dataset []*circulation.Record) (report *Report, err error) {
	defer func() {
		if dropErr := r.store.Drop(context.WithoutCancel(ctx)); dropErr != nil {
			r.logger.Error().Err(dropErr).Msg("Unable to drop database")
			err = errors.Join(err, fmt.Errorf("drop database: %w", dropErr))
		}
	}()

	report, err = r.script(ctx, dataset)
	if err != nil {
		r.logger.Error().Err(err).Msg("???some assertion failed???")
		return nil, err
	}

	r.logger.Info().Msg("...all assertions passed...")
	return report, nil
}

func (r *Runner) script(ctx context.Context, dataset []*circulation.Record) (*Report, error) {
	if len(dataset) <= ProbeIndex {
		return nil, errDatasetTooSmall
	}

	loaded, err := r.store.LoadData(ctx, dataset)
	if err != nil {
		return nil, err
	}
	if err = assertEqual("load data count", len(dataset), loaded.Count); err != nil {
		return nil, err
	}

	all, err := r.store.Get(ctx, nil, 0)
	if err != nil {
		return nil, err
	}
	if err = assertEqual("get all count", len(dataset), len(all)); err != nil {
		return nil, err
	}
	probe := all[ProbeIndex]

	filtered, err := r.store.Get(ctx, circulation.ByNewspaper(probe.Newspaper), 0)
	if err != nil {
		return nil, err
	}
	if err = assertTrue("filter by newspaper", len(filtered) > 0, "at least one record"); err != nil {
		return nil, err
	}
	if err = assertEqual("filter by newspaper", probe, filtered[0]); err != nil {
		return nil, err
	}

	limited, err := r.store.Get(ctx, nil, ProbeLimit)
	if err != nil {
		return nil, err
	}
	if err = assertEqual("get with limit", ProbeLimit, len(limited)); err != nil {
		return nil, err
	}

	byID, err := r.store.GetByID(ctx, probe.ID().Hex())
	if err != nil {
		return nil, err
	}
	if err = assertEqual("get by id", probe, byID); err != nil {
		return nil, err
	}

	if err = r.addUpdateRemove(ctx); err != nil {
		return nil, err
	}

	count, err := r.store.Count(ctx, nil)
	if err != nil {
		return nil, err
	}
	if err = assertEqual("count after add and remove", int64(len(dataset)), count); err != nil {
		return nil, err
	}

	report := &Report{Loaded: loaded.Count}
	if report.AverageFinalists, err = r.store.AverageFinalists(ctx); err != nil {
		return nil, err
	}
	for _, average := range report.AverageFinalists {
		r.logger.Info().Float64("avgFinalists", average.AvgFinalists).Int("count", average.Count).
			Msg("averageFinalists")
	}

	if report.AverageByChange, err = r.store.AverageFinalistsByChange(ctx); err != nil {
		return nil, err
	}
	for _, average := range report.AverageByChange {
		r.logger.Info().Interface("change", average.Group).Float64("avgFinalists", average.AvgFinalists).
			Int("count", average.Count).Msg("averageByChange")
	}

	return report, nil
}

// addUpdateRemove takes a new record through its whole lifecycle.
func (r *Runner) addUpdateRemove(ctx context.Context) error {
	newItem := &circulation.Record{
		Newspaper:       newItemName,
		Circulation2004: 1,
		Circulation2013: 2,
		Change:          100,
	}
	expected := newItem.Clone()

	oid, err := r.store.Add(ctx, newItem)
	if err != nil {
		return err
	}
	if err = assertTrue("add", !oid.IsZero(), "assigned identifier"); err != nil {
		return err
	}
	id := oid.Hex()
	expected.SetID(oid)

	added, err := r.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err = assertEqual("get added", expected, added); err != nil {
		return err
	}

	replacement := added.Clone()
	replacement.Newspaper = updatedItemName
	updated, err := r.store.Update(ctx, id, replacement)
	if err != nil {
		return err
	}
	if err = assertEqual("update", replacement, updated); err != nil {
		return err
	}
	reread, err := r.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err = assertEqual("get updated", replacement, reread); err != nil {
		return err
	}

	removed, err := r.store.RemoveByID(ctx, id)
	if err != nil {
		return err
	}
	if err = assertTrue("remove", removed, "record removed"); err != nil {
		return err
	}
	removed, err = r.store.RemoveByID(ctx, id)
	if err != nil {
		return err
	}
	if err = assertTrue("remove again", !removed, "nothing removed"); err != nil {
		return err
	}
	gone, err := r.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return assertTrue("get removed", gone == nil, "no record")
}
