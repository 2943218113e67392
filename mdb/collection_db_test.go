//go:build database

package mdb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type collectionTestSuite struct {
	AccessTestSuite
}

func TestCollectionSuite(t *testing.T) {
	suite.Run(t, new(collectionTestSuite))
}

func (suite *collectionTestSuite) TestEnsureCollection() {
	collection, err := suite.access.EnsureCollection(context.Background(), "mdb-collection")
	suite.Require().NoError(err)
	suite.NotNil(collection)
	// Second time the collection already exists.
	collection, err = suite.access.EnsureCollection(context.Background(), "mdb-collection")
	suite.Require().NoError(err)
	suite.NotNil(collection)
}

func (suite *collectionTestSuite) TestEnsureCollectionFinisher() {
	var finished bool
	collection, err := suite.access.EnsureCollection(context.Background(), "mdb-collection-finisher",
		func(ctx context.Context, access *Access, collection *Collection) error {
			access.Logger().Info().Msg("Running finisher")
			finished = true
			return nil
		})
	suite.Require().NoError(err)
	suite.NotNil(collection)
	suite.True(finished)
}

func (suite *collectionTestSuite) TestEnsureCollectionFinisherError() {
	collection, err := suite.access.EnsureCollection(context.Background(), "mdb-collection-finisher-error",
		func(ctx context.Context, access *Access, collection *Collection) error {
			return errors.New("fail")
		})
	suite.Error(err)
	suite.Nil(collection)
}

func (suite *collectionTestSuite) TestCreateCountDelete() {
	ctx := context.Background()
	collection := suite.ConnectCollection("mdb-create-count-delete")
	id, err := collection.Create(ctx, bson.D{{Key: "alpha", Value: "one"}})
	suite.Require().NoError(err)
	oid, ok := id.(primitive.ObjectID)
	suite.Require().True(ok)
	ids, err := collection.CreateMany(ctx, []interface{}{
		bson.D{{Key: "alpha", Value: "two"}},
		bson.D{{Key: "alpha", Value: "three"}},
	})
	suite.Require().NoError(err)
	suite.Len(ids, 2)
	count, err := collection.Count(ctx, nil)
	suite.Require().NoError(err)
	suite.Equal(int64(3), count)
	deleted, err := collection.Delete(ctx, bson.D{{Key: "_id", Value: oid}})
	suite.Require().NoError(err)
	suite.Equal(int64(1), deleted)
	deleted, err = collection.Delete(ctx, bson.D{{Key: "_id", Value: oid}})
	suite.Require().NoError(err)
	suite.Zero(deleted)
	suite.Require().NoError(collection.DeleteAll(ctx))
	count, err = collection.Count(ctx, NoFilter())
	suite.Require().NoError(err)
	suite.Zero(count)
}

func (suite *collectionTestSuite) TestCreateManyEmpty() {
	collection := suite.ConnectCollection("mdb-create-many-empty")
	ids, err := collection.CreateMany(context.Background(), nil)
	suite.Error(err)
	suite.Nil(ids)
}
