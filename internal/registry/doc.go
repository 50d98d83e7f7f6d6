// Package registry fetches and parses the ODPC register of data handlers.
//
// The Fetcher downloads the public registered-data-handlers page from
// odpc.go.ke and turns its first HTML table into a dataset.Table keyed by the
// table's header cells. Rows whose cell count differs from the header are
// skipped. Fetched datasets can be served from a one-hour Cache, optionally
// backed by an on-disk snapshot, so repeated checks skip the network.
package registry
