// Package storage provides JSON persistence for register snapshots.
//
// A snapshot is the last successfully fetched register dataset together with
// the time it was fetched. It lets separate runs of odpc-checker share one
// fetch within the cache window. The snapshot is written to register.json in
// the configured cache directory; without one no snapshot is kept.
package storage
