package smoke

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/madkins23/go-circulation/circulation"
	"github.com/madkins23/go-circulation/mdbid"
	"github.com/madkins23/go-circulation/test"
)

var errStore = errors.New("store failure")

// memoryStore is an in-memory Store for exercising the script without a database.
type memoryStore struct {
	records     []*circulation.Record
	dropped     int
	failOn      string
	staleUpdate bool
}

var _ Store = &memoryStore{}

func (m *memoryStore) fail(operation string) error {
	if m.failOn == operation {
		return errStore
	}
	return nil
}

func matches(record *circulation.Record, filter bson.D) bool {
	doc := record.Document()
	for _, want := range filter {
		found := false
		for _, have := range doc {
			if have.Key == want.Key && assert.ObjectsAreEqualValues(want.Value, have.Value) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (m *memoryStore) find(id string) (int, error) {
	oid, err := mdbid.Parse(id)
	if err != nil {
		return -1, err
	}
	for i, record := range m.records {
		if record.ID() == oid {
			return i, nil
		}
	}
	return -1, nil
}

func (m *memoryStore) LoadData(_ context.Context, records []*circulation.Record) (*circulation.LoadResult, error) {
	if err := m.fail("LoadData"); err != nil {
		return nil, err
	}
	result := &circulation.LoadResult{}
	for _, record := range records {
		record.SetID(primitive.NewObjectID())
		m.records = append(m.records, record.Clone())
		result.IDs = append(result.IDs, record.ID())
		result.Count++
	}
	return result, nil
}

func (m *memoryStore) Get(_ context.Context, filter bson.D, limit int64) ([]*circulation.Record, error) {
	if err := m.fail("Get"); err != nil {
		return nil, err
	}
	found := make([]*circulation.Record, 0)
	for _, record := range m.records {
		if limit > 0 && int64(len(found)) >= limit {
			break
		}
		if matches(record, filter) {
			found = append(found, record.Clone())
		}
	}
	return found, nil
}

func (m *memoryStore) GetByID(_ context.Context, id string) (*circulation.Record, error) {
	i, err := m.find(id)
	if err != nil || i < 0 {
		return nil, err
	}
	return m.records[i].Clone(), nil
}

func (m *memoryStore) Add(_ context.Context, record *circulation.Record) (primitive.ObjectID, error) {
	if err := m.fail("Add"); err != nil {
		return primitive.NilObjectID, err
	}
	record.SetID(primitive.NewObjectID())
	m.records = append(m.records, record.Clone())
	return record.ID(), nil
}

func (m *memoryStore) Update(_ context.Context, id string, record *circulation.Record) (*circulation.Record, error) {
	i, err := m.find(id)
	if err != nil || i < 0 {
		return nil, err
	}
	if !m.staleUpdate {
		replaced := record.Clone()
		replaced.SetID(m.records[i].ID())
		m.records[i] = replaced
	}
	return m.records[i].Clone(), nil
}

func (m *memoryStore) RemoveByID(_ context.Context, id string) (bool, error) {
	i, err := m.find(id)
	if err != nil || i < 0 {
		return false, err
	}
	m.records = append(m.records[:i], m.records[i+1:]...)
	return true, nil
}

func (m *memoryStore) Count(_ context.Context, filter bson.D) (int64, error) {
	var count int64
	for _, record := range m.records {
		if matches(record, filter) {
			count++
		}
	}
	return count, nil
}

func (m *memoryStore) AverageFinalists(_ context.Context) ([]*circulation.FinalistsAverage, error) {
	bucket := test.MeanFinalists(m.records)
	return []*circulation.FinalistsAverage{{AvgFinalists: bucket.Average, Count: bucket.Count}}, nil
}

func (m *memoryStore) AverageFinalistsByChange(_ context.Context) ([]*circulation.FinalistsAverage, error) {
	averages := make([]*circulation.FinalistsAverage, 0, 2)
	for key, bucket := range test.MeanFinalistsByChange(m.records) {
		averages = append(averages, &circulation.FinalistsAverage{Group: key, AvgFinalists: bucket.Average, Count: bucket.Count})
	}
	sort.Slice(averages, func(i, j int) bool {
		return averages[i].Group.(string) < averages[j].Group.(string)
	})
	return averages, nil
}

func (m *memoryStore) Drop(_ context.Context) error {
	m.dropped++
	m.records = nil
	return m.fail("Drop")
}

////////////////////////////////////////////////////////////////////////////////

func newTestRunner(store Store) (*Runner, *bytes.Buffer) {
	output := &bytes.Buffer{}
	return NewRunner(store, zerolog.New(output)), output
}

func dataset(t *testing.T) []*circulation.Record {
	records, err := circulation.Dataset()
	require.NoError(t, err)
	return records
}

func TestRun(t *testing.T) {
	store := &memoryStore{}
	runner, output := newTestRunner(store)
	records := dataset(t)
	report, err := runner.Run(context.Background(), records)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, len(records), report.Loaded)
	assert.Equal(t, 1, store.dropped)
	assert.Empty(t, store.records)

	require.Len(t, report.AverageFinalists, 1)
	assert.InDelta(t, 777.0/50.0, report.AverageFinalists[0].AvgFinalists, 1e-9)
	require.Len(t, report.AverageByChange, 2)
	assert.Equal(t, circulation.ChangeNegative, report.AverageByChange[0].Group)
	assert.Equal(t, circulation.ChangePositive, report.AverageByChange[1].Group)
	assert.Equal(t, len(records), report.AverageByChange[0].Count+report.AverageByChange[1].Count)

	assert.Contains(t, output.String(), "all assertions passed")
	assert.Contains(t, output.String(), "averageByChange")
}

func TestRunAssertionFailure(t *testing.T) {
	store := &memoryStore{staleUpdate: true}
	runner, output := newTestRunner(store)
	report, err := runner.Run(context.Background(), dataset(t))
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.Is(err, ErrAssertion))
	var assertion *AssertionError
	require.True(t, errors.As(err, &assertion))
	assert.Equal(t, "update", assertion.Step)
	assert.Equal(t, 1, store.dropped)
	assert.Contains(t, output.String(), "some assertion failed")
}

func TestRunStoreFailure(t *testing.T) {
	for _, operation := range []string{"LoadData", "Get", "Add"} {
		store := &memoryStore{failOn: operation}
		runner, _ := newTestRunner(store)
		_, err := runner.Run(context.Background(), dataset(t))
		assert.ErrorIs(t, err, errStore, operation)
		assert.False(t, errors.Is(err, ErrAssertion), operation)
		assert.Equal(t, 1, store.dropped, operation)
	}
}

func TestRunDropFailure(t *testing.T) {
	store := &memoryStore{failOn: "Drop"}
	runner, _ := newTestRunner(store)
	_, err := runner.Run(context.Background(), dataset(t))
	assert.ErrorIs(t, err, errStore)
	assert.Equal(t, 1, store.dropped)
}

func TestRunDatasetTooSmall(t *testing.T) {
	store := &memoryStore{}
	runner, _ := newTestRunner(store)
	_, err := runner.Run(context.Background(), test.SampleRecords())
	assert.ErrorIs(t, err, errDatasetTooSmall)
	assert.Equal(t, 1, store.dropped)
}

func TestAssertionError(t *testing.T) {
	assert.NoError(t, assertEqual("same", 1, 1))
	err := assertEqual("different", 1, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAssertion)
	assert.Equal(t, "assertion failed: different: expected 1, actual 2", err.Error())
	assert.NoError(t, assertTrue("true", true, "yes"))
	assert.ErrorIs(t, assertTrue("false", false, "yes"), ErrAssertion)
}
