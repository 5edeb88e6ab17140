// Package cmap provides a concurrent-safe sharded map.
//
// It splits entries across independently locked shards to reduce
// contention, which suits hot tracking tables such as the live-allocation
// index kept by the checked memory resource: many goroutines insert and
// remove entries for unrelated keys at allocation rates.
package cmap
