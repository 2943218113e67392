package test

import (
	"github.com/madkins23/go-circulation/circulation"
)

const (
	MyPaperName    = "My paper"
	MyNewPaperName = "My New paper"
)

// MyPaper returns a new record that is not part of the bundled dataset.
func MyPaper() *circulation.Record {
	return &circulation.Record{
		Newspaper:           MyPaperName,
		Circulation2004:     1,
		Circulation2013:     2,
		Change:              100,
		Finalists1990To2003: 0,
		Finalists2004To2014: 0,
		Finalists1990To2014: 0,
	}
}

// SampleRecords returns a small set of records with both signs of circulation change.
// Averages: overall 7, positive (Alpha, Charlie) 10, negative (Bravo, Delta) 4.
func SampleRecords() []*circulation.Record {
	return []*circulation.Record{
		{Newspaper: "Alpha Gazette", Circulation2004: 1000, Circulation2013: 1500, Change: 50,
			Finalists1990To2003: 4, Finalists2004To2014: 8, Finalists1990To2014: 12},
		{Newspaper: "Bravo Herald", Circulation2004: 2000, Circulation2013: 1000, Change: -50,
			Finalists1990To2003: 1, Finalists2004To2014: 2, Finalists1990To2014: 3},
		{Newspaper: "Charlie Times", Circulation2004: 300, Circulation2013: 300, Change: 0,
			Finalists1990To2003: 5, Finalists2004To2014: 3, Finalists1990To2014: 8},
		{Newspaper: "Delta Courier", Circulation2004: 800, Circulation2013: 600, Change: -25,
			Finalists1990To2003: 3, Finalists2004To2014: 2, Finalists1990To2014: 5},
	}
}

// Bucket holds the expected result of a finalist average computed in Go.
type Bucket struct {
	Count   int
	Average float64
}

// MeanFinalists computes the mean 1990-2014 finalists of the records.
func MeanFinalists(records []*circulation.Record) Bucket {
	var bucket Bucket
	var sum int
	for _, record := range records {
		sum += record.Finalists1990To2014
		bucket.Count++
	}
	if bucket.Count > 0 {
		bucket.Average = float64(sum) / float64(bucket.Count)
	}
	return bucket
}

// MeanFinalistsByChange computes the mean 1990-2014 finalists per sign of circulation change,
// keyed by circulation.ChangePositive and circulation.ChangeNegative.
func MeanFinalistsByChange(records []*circulation.Record) map[string]Bucket {
	split := make(map[string][]*circulation.Record)
	for _, record := range records {
		key := circulation.ChangeNegative
		if record.Change >= 0 {
			key = circulation.ChangePositive
		}
		split[key] = append(split[key], record)
	}

	buckets := make(map[string]Bucket, len(split))
	for key, bucket := range split {
		buckets[key] = MeanFinalists(bucket)
	}
	return buckets
}
