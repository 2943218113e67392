package circulation

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// To regenerate the golden files run:
//
//	go test ./circulation -run Pipeline -update
func assertPipeline(t *testing.T, name string, pipeline mongo.Pipeline) {
	t.Helper()
	rendered, err := bson.MarshalExtJSON(bson.D{{Key: "pipeline", Value: pipeline}}, false, false)
	require.NoError(t, err)
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, append(rendered, '\n'))
}

func TestAverageFinalistsPipeline(t *testing.T) {
	assertPipeline(t, "average_finalists", averageFinalistsPipeline())
}

func TestAverageFinalistsByChangePipeline(t *testing.T) {
	assertPipeline(t, "average_finalists_by_change", averageFinalistsByChangePipeline())
}
