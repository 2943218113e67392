package mdbid

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identifier provides an interface to items that use the primitive Mongo ObjectID.
type Identifier interface {
	ID() primitive.ObjectID
	SetID(oid primitive.ObjectID)
	Filter() bson.D
}

// Identity instantiates the Identifier interface.
// It is intended to be embedded in stored items.
type Identity struct {
	OID primitive.ObjectID `bson:"_id,omitempty"`
}

// ID returns the primitive Mongo ObjectID for an item.
func (idm *Identity) ID() primitive.ObjectID {
	return idm.OID
}

// SetID sets the primitive Mongo ObjectID for an item, usually after insertion.
func (idm *Identity) SetID(oid primitive.ObjectID) {
	idm.OID = oid
}

// HasID returns true if the item has been assigned an ObjectID.
func (idm *Identity) HasID() bool {
	return !idm.OID.IsZero()
}

// Filter returns a Mongo filter object for the item's ID.
func (idm *Identity) Filter() bson.D {
	return FilterFor(idm.OID)
}
