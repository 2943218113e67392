package circulation

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	// ChangePositive is the group key for records whose circulation did not drop.
	ChangePositive = "positive"
	// ChangeNegative is the group key for records whose circulation dropped.
	ChangeNegative = "negative"
)

// FinalistsAverage is a single result document from the finalist aggregations.
// Group is nil when all records are aggregated together.
type FinalistsAverage struct {
	Group        interface{} `bson:"_id"`
	AvgFinalists float64     `bson:"avgFinalists"`
	Count        int         `bson:"count"`
}

func fieldRef(key string) string {
	return "$" + key
}

func finalistsGroup(groupBy interface{}) bson.D {
	return bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: groupBy},
		{Key: "avgFinalists", Value: bson.D{{Key: "$avg", Value: fieldRef(KeyFinalists1990To2014)}}},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
	}}}
}

// averageFinalistsPipeline averages the 1990-2014 finalists over every record.
func averageFinalistsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		finalistsGroup(nil),
	}
}

// averageFinalistsByChangePipeline splits records on the sign of the 2004-2013 change
// and averages the 1990-2014 finalists within each bucket.
func averageFinalistsByChangePipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: KeyNewspaper, Value: 1},
			{Key: KeyFinalists1990To2014, Value: 1},
			{Key: KeyChange, Value: 1},
			{Key: "overallChange", Value: bson.D{{Key: "$cond", Value: bson.D{
				{Key: "if", Value: bson.D{{Key: "$gte", Value: bson.A{fieldRef(KeyChange), 0}}}},
				{Key: "then", Value: ChangePositive},
				{Key: "else", Value: ChangeNegative},
			}}}},
		}}},
		finalistsGroup("$overallChange"),
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}
