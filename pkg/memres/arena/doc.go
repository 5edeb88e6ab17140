// Package arena provides a monotonic chunked bump resource.
//
// An Arena hands out sequential slices of large chunks and reclaims
// everything at once on Reset or Release, so individual Deallocate calls are
// no-ops and NeedsRelease reports false. This suits parse-and-discard
// workloads: build a document, serialize it, drop the whole arena.
//
// Features:
//   - O(1) bump allocation with alignment by offset padding
//   - Oversized requests get a dedicated chunk
//   - Optional capacity bound (allocation failure when exhausted)
//   - Reset retains chunks for reuse; Release returns them to the collector
//   - Len/Cap/Peak usage accounting
//
// An Arena is not safe for concurrent use; callers that share one across
// goroutines must synchronize externally or use a pooled resource instead.
package arena
