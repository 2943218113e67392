package mdb

import (
	"context"

	"github.com/stretchr/testify/suite"
)

const AccessTestDBname = "db-test"

type AccessTestSuite struct {
	suite.Suite
	access *Access
}

func (suite *AccessTestSuite) Access() *Access {
	return suite.access
}

func (suite *AccessTestSuite) SetupSuite() {
	suite.SetupSuiteConfig(nil)
}

func (suite *AccessTestSuite) SetupSuiteConfig(config *Config) {
	var err error
	suite.access, err = Connect(context.Background(), AccessTestDBname, config)
	suite.Require().NoError(err, "connect to mongo")
	suite.access.Logger().Info().Msg("Suite setup")
}

func (suite *AccessTestSuite) TearDownSuite() {
	suite.access.Logger().Info().Msg("Suite teardown")
	suite.NoError(suite.access.DropDatabase(context.Background()), "drop test database")
	suite.NoError(suite.access.Disconnect(context.Background()), "disconnect from mongo")
}

// ConnectCollection connects to the specified collection and adds any provided indexes
// as necessary in a SetupSuite() with test checks so that any errors blow up the test.
func (suite *AccessTestSuite) ConnectCollection(name string, indexDescriptions ...*IndexDescription) *Collection {
	ctx := context.Background()
	collection, err := suite.access.EnsureCollection(ctx, name)
	suite.Require().NoError(err)
	suite.NotNil(collection)
	suite.Require().NoError(collection.DeleteAll(ctx))
	for _, indexDescription := range indexDescriptions {
		suite.Require().NoError(suite.access.Index(ctx, collection, indexDescription))
	}
	return collection
}

// ConnectTypedCollectionHelper is similar to AccessTestSuite.ConnectCollection().
// Go doesn't support generic methods so this can't be a method on AccessTestSuite.
func ConnectTypedCollectionHelper[T any](
	suite *AccessTestSuite, name string, indexDescriptions ...*IndexDescription) *TypedCollection[T] {
	return NewTypedCollection[T](suite.ConnectCollection(name, indexDescriptions...))
}
