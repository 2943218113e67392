package circulation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/madkins23/go-circulation/mdbid"
)

// Document keys as they appear in the source dataset.
// The commas in the keys make them impossible to express as struct tags.
const (
	KeyNewspaper           = "Newspaper"
	KeyCirculation2004     = "Daily Circulation, 2004"
	KeyCirculation2013     = "Daily Circulation, 2013"
	KeyChange              = "Change in Daily Circulation, 2004-2013"
	KeyFinalists1990To2003 = "Pulitzer Prize Winners and Finalists, 1990-2003"
	KeyFinalists2004To2014 = "Pulitzer Prize Winners and Finalists, 2004-2014"
	KeyFinalists1990To2014 = "Pulitzer Prize Winners and Finalists, 1990-2014"
)

var _ mdbid.Identifier = &Record{}

// Record holds the circulation statistics for a single newspaper.
type Record struct {
	mdbid.Identity
	Newspaper           string
	Circulation2004     int
	Circulation2013     int
	Change              int
	Finalists1990To2003 int
	Finalists2004To2014 int
	Finalists1990To2014 int
}

// Clone returns a copy of the record.
func (r *Record) Clone() *Record {
	clone := *r
	return &clone
}

// Fields returns the record's data fields in dataset order, without the _id.
func (r *Record) Fields() bson.D {
	return bson.D{
		{Key: KeyNewspaper, Value: r.Newspaper},
		{Key: KeyCirculation2004, Value: r.Circulation2004},
		{Key: KeyCirculation2013, Value: r.Circulation2013},
		{Key: KeyChange, Value: r.Change},
		{Key: KeyFinalists1990To2003, Value: r.Finalists1990To2003},
		{Key: KeyFinalists2004To2014, Value: r.Finalists2004To2014},
		{Key: KeyFinalists1990To2014, Value: r.Finalists1990To2014},
	}
}

// Document returns the full document for the record, including the _id if assigned.
func (r *Record) Document() bson.D {
	if !r.HasID() {
		return r.Fields()
	}
	return append(bson.D{{Key: "_id", Value: r.ID()}}, r.Fields()...)
}

// MarshalBSON implements bson.Marshaler.
func (r *Record) MarshalBSON() ([]byte, error) {
	return bson.Marshal(r.Document())
}

// UnmarshalBSON implements bson.Unmarshaler.
// Missing fields are left as zero values and unknown fields are ignored.
func (r *Record) UnmarshalBSON(data []byte) error {
	var doc bson.M
	if err := bson.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal record document: %w", err)
	}

	*r = Record{}
	if raw, found := doc["_id"]; found {
		oid, ok := raw.(primitive.ObjectID)
		if !ok {
			return fmt.Errorf("record _id %v is %T, not an ObjectID", raw, raw)
		}
		r.SetID(oid)
	}

	return r.fromMap(doc)
}

// UnmarshalJSON implements json.Unmarshaler for records in the dataset file.
// An _id in the JSON, if any, is not used.
func (r *Record) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var doc map[string]interface{}
	if err := decoder.Decode(&doc); err != nil {
		return fmt.Errorf("unmarshal record JSON: %w", err)
	}

	*r = Record{}
	return r.fromMap(doc)
}

func (r *Record) fromMap(doc map[string]interface{}) error {
	if raw, found := doc[KeyNewspaper]; found && raw != nil {
		name, ok := raw.(string)
		if !ok {
			return fmt.Errorf("field '%s' value %v is %T, not a string", KeyNewspaper, raw, raw)
		}
		r.Newspaper = name
	}

	for key, field := range map[string]*int{
		KeyCirculation2004:     &r.Circulation2004,
		KeyCirculation2013:     &r.Circulation2013,
		KeyChange:              &r.Change,
		KeyFinalists1990To2003: &r.Finalists1990To2003,
		KeyFinalists2004To2014: &r.Finalists2004To2014,
		KeyFinalists1990To2014: &r.Finalists1990To2014,
	} {
		raw, found := doc[key]
		if !found || raw == nil {
			continue
		}
		value, err := toInt(raw)
		if err != nil {
			return fmt.Errorf("field '%s': %w", key, err)
		}
		*field = value
	}

	return nil
}

// toInt accepts the numeric representations produced by the BSON and JSON decoders.
func toInt(raw interface{}) (int, error) {
	switch value := raw.(type) {
	case int32:
		return int(value), nil
	case int64:
		return int(value), nil
	case int:
		return value, nil
	case float64:
		if value != math.Trunc(value) {
			return 0, fmt.Errorf("value %v is not an integer", value)
		}
		return int(value), nil
	case json.Number:
		if i, err := value.Int64(); err == nil {
			return int(i), nil
		}
		f, err := value.Float64()
		if err != nil {
			return 0, fmt.Errorf("value %s is not a number: %w", value, err)
		}
		return toInt(f)
	default:
		return 0, fmt.Errorf("value %v is %T, not a number", raw, raw)
	}
}
