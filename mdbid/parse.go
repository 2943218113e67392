package mdbid

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrMalformedID is returned when a string is not a well-formed ObjectID.
var ErrMalformedID = errors.New("malformed object ID")

// Parse converts the 24 character hex form of an ObjectID.
func Parse(hex string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w '%s': %s", ErrMalformedID, hex, err)
	}

	return oid, nil
}

// FilterFor returns a Mongo filter object matching the specified ObjectID.
func FilterFor(oid primitive.ObjectID) bson.D {
	return bson.D{{Key: "_id", Value: oid}}
}

// FromInserted converts an InsertedID value returned by the driver.
// Documents inserted without an _id get a generated ObjectID,
// anything else means the caller supplied its own identifier type.
func FromInserted(inserted interface{}) (primitive.ObjectID, error) {
	oid, ok := inserted.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("inserted ID %v is %T, not an ObjectID", inserted, inserted)
	}

	return oid, nil
}
