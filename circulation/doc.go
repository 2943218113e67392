// Package circulation stores newspaper circulation and Pulitzer Prize statistics in Mongo.
//
// A Record holds the figures for one newspaper under the literal keys of the
// bundled dataset, which Dataset() decodes. The Repository loads, queries,
// replaces and removes records and runs the two finalist aggregations.
// Each Repository operation opens a dedicated connection via mdb.Connect
// and releases it before returning, whatever the outcome.
package circulation
