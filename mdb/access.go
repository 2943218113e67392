package mdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Access encapsulates database connection.
type Access struct {
	client   *mongo.Client
	database *mongo.Database
	config   Config
}

var (
	// DefaultURI is the default connection URI if not provided in Config.Options.
	DefaultURI = "mongodb://localhost:27017"

	// DefaultConnectTimeout is the default timeout for the initial connect.
	DefaultConnectTimeout = 10 * time.Second

	// DefaultDisconnectTimeout is the default timeout for the disconnect.
	DefaultDisconnectTimeout = 10 * time.Second

	// DefaultPingTimeout is the default timeout for the ping to make sure the connection is up.
	DefaultPingTimeout = 2 * time.Second

	// DefaultCollectionTimeout is the default timeout for collection management.
	DefaultCollectionTimeout = 5 * time.Second

	// DefaultIndexTimeout is the default timeout for index access.
	DefaultIndexTimeout = 5 * time.Second
)

// Config items for Mongo DB connection.
type Config struct {
	// Mongo options.
	Options *options.ClientOptions

	// Logger for information messages may be overridden.
	// Errors should bubble up and be handled by client code.
	Logger *zerolog.Logger

	Timeout
}

// Timeout settings for Mongo DB access.
type Timeout struct {
	// Timeout for the initial connect.
	Connect time.Duration

	// Timeout for the disconnect.
	Disconnect time.Duration

	// Timeout for the ping to make sure the connection is up.
	Ping time.Duration

	// Timeout for collection creation and listing.
	Collection time.Duration

	// Timeout for indexes.
	Index time.Duration

	// Timeout for document requests.
	// Zero means requests are bounded only by the caller's context.
	Request time.Duration
}

var ErrNoDbName = errors.New("no database name")

// Connect to Mongo DB and return Access object.
// If the config is nil or has no options the URI will be set to mdb.DefaultURI.
func Connect(ctx context.Context, dbName string, config *Config) (*Access, error) {
	if dbName == "" {
		return nil, ErrNoDbName
	}

	cfg := fixConfig(config)
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout.Connect)
	defer cancel()

	client, err := mongo.Connect(connectCtx, cfg.Options)
	if err != nil {
		return nil, fmt.Errorf("unable to connect mongo server: %w", err)
	}

	access := &Access{
		client:   client,
		database: client.Database(dbName),
		config:   cfg,
	}

	if err = access.Ping(ctx); err != nil {
		// Don't leak the client topology when the server can't be reached.
		_ = access.Disconnect(ctx)
		return nil, err
	}

	access.Logger().Debug().Str("database", access.database.Name()).Msg("Connected to MongoDB")

	return access, nil
}

// ConnectOrPanic connects to Mongo DB and returns Access object or panics on error.
func ConnectOrPanic(ctx context.Context, dbName string, config *Config) *Access {
	access, err := Connect(ctx, dbName, config)
	if err != nil {
		panic(err)
	}

	return access
}

// Disconnect Mongo DB client.
// Provided for use in defer statements.
func (a *Access) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.config.Timeout.Disconnect)
	defer cancel()
	if err := a.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("unable to disconnect mongo server: %w", err)
	}

	a.Logger().Debug().Str("database", a.database.Name()).Msg("Disconnected from MongoDB")
	return nil
}

// DisconnectOrPanic disconnects the Mongo DB client or panics on error.
// Provided for use in defer statements.
func (a *Access) DisconnectOrPanic(ctx context.Context) {
	if err := a.Disconnect(ctx); err != nil {
		panic(err)
	}
}

// Client returns the Mongo client object.
func (a *Access) Client() *mongo.Client {
	return a.client
}

// Database returns the Mongo database object.
func (a *Access) Database() *mongo.Database {
	return a.database
}

// DropDatabase drops the entire database and all of its collections.
func (a *Access) DropDatabase(ctx context.Context) error {
	ctx, cancel := a.RequestContext(ctx)
	defer cancel()
	if err := a.database.Drop(ctx); err != nil {
		return fmt.Errorf("drop database %s: %w", a.database.Name(), err)
	}

	a.Logger().Info().Str("database", a.database.Name()).Msg("Dropped database")
	return nil
}

// Logger returns the logger for the object.
func (a *Access) Logger() *zerolog.Logger {
	return a.config.Logger
}

// RequestContext returns the specified context bounded by the request timeout, if any.
func (a *Access) RequestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.Timeout.Request > 0 {
		return context.WithTimeout(ctx, a.config.Timeout.Request)
	}
	return context.WithCancel(ctx)
}

// Ping executes a ping against the Mongo server.
// This is separated from Connect() so that it can be used on its own.
func (a *Access) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout.Ping)
	defer cancel()
	err := a.client.Ping(ctx, readpref.Primary())
	if err != nil {
		return fmt.Errorf("unable to ping mongo server: %w", err)
	}

	return nil
}

func fixConfig(config *Config) Config {
	var cfg Config
	if config != nil {
		cfg = *config
	}

	if cfg.Options == nil {
		cfg.Options = options.Client().ApplyURI(DefaultURI)
	} else if cfg.Options.GetURI() == "" && len(cfg.Options.Hosts) == 0 {
		cfg.Options = options.MergeClientOptions(options.Client().ApplyURI(DefaultURI), cfg.Options)
	}

	if cfg.Logger == nil {
		logger := log.With().Str("component", "mdb").Logger()
		cfg.Logger = &logger
	}

	if cfg.Timeout.Connect == 0 {
		cfg.Timeout.Connect = DefaultConnectTimeout
	}

	if cfg.Timeout.Disconnect == 0 {
		cfg.Timeout.Disconnect = DefaultDisconnectTimeout
	}

	if cfg.Timeout.Ping == 0 {
		cfg.Timeout.Ping = DefaultPingTimeout
	}

	if cfg.Timeout.Collection == 0 {
		cfg.Timeout.Collection = DefaultCollectionTimeout
	}

	if cfg.Timeout.Index == 0 {
		cfg.Timeout.Index = DefaultIndexTimeout
	}

	return cfg
}

////////////////////////////////////////////////////////////////////////////////

var errMissingCollectionName = errors.New("no collection name argument")

// CollectionExists checks to see if a specific collection already exists.
func (a *Access) CollectionExists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, errMissingCollectionName
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout.Collection)
	defer cancel()
	names, err := a.database.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, fmt.Errorf("getting collection names: %w", err)
	}

	for _, collName := range names {
		if collName == name {
			return true, nil
		}
	}

	return false, nil
}

// CollectionFinisher provides a way to add special processing when creating a collection.
type CollectionFinisher func(ctx context.Context, access *Access, collection *Collection) error

// Collection returns the named collection without touching the server.
// Mongo creates collections implicitly on first write.
func (a *Access) Collection(collectionName string) (*Collection, error) {
	if collectionName == "" {
		return nil, errMissingCollectionName
	}

	return &Collection{Access: a, Collection: a.database.Collection(collectionName)}, nil
}

// EnsureCollection acquires the named collection, creating it if necessary.
// Finishers are only run when the collection is created.
func (a *Access) EnsureCollection(
	ctx context.Context, collectionName string, finishers ...CollectionFinisher) (*Collection, error) {
	if collectionName == "" {
		return nil, errMissingCollectionName
	}

	if exists, err := a.CollectionExists(ctx, collectionName); err != nil {
		return nil, fmt.Errorf("does collection '%s' exist: %w", collectionName, err)
	} else if exists {
		// Collection already exists, just return it.
		return a.Collection(collectionName)
	}

	createCtx, cancel := context.WithTimeout(ctx, a.config.Timeout.Collection)
	defer cancel()
	if err := a.database.CreateCollection(createCtx, collectionName); err != nil {
		var cmdErr mongo.CommandError
		if !errors.As(err, &cmdErr) || cmdErr.Name != "NamespaceExists" {
			return nil, fmt.Errorf("create collection: %w", err)
		}
	}

	collection, err := a.Collection(collectionName)
	if err != nil {
		return nil, err
	}
	a.Logger().Info().Str("collection", collection.Name()).Msg("Created collection")

	for i, finisher := range finishers {
		if err = finisher(ctx, a, collection); err != nil {
			return nil, fmt.Errorf("collection finisher #%d: %w", i, err)
		}
	}

	return collection, nil
}

////////////////////////////////////////////////////////////////////////////////
// Functions to check for specific, known errors.

// IsDuplicate checks to see if the specified error is for attempting to create a duplicate document.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}

	return mongo.IsDuplicateKeyError(err)
}

// IsNotFound checks an error condition to see if it matches the underlying database "not found" error.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, mongo.ErrNoDocuments)
}

// IsNetwork checks to see if the specified error came from failing to reach the server.
func IsNetwork(err error) bool {
	if err == nil {
		return false
	}

	return mongo.IsNetworkError(err) || mongo.IsTimeout(err) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, mongo.ErrClientDisconnected)
}
