// Package slab provides a pooled size-class resource.
//
// A Pool rounds requests up to power-of-two classes and recycles returned
// buffers through per-class freelists, trading a little internal
// fragmentation for allocation reuse under steady churn. Unlike an arena,
// buffers live independently: NeedsRelease reports true and every Allocate
// must be paired with a Deallocate.
//
// Features:
//   - Power-of-two size classes between the configured min and max
//   - Bounded per-class retention (excess returns go to the collector)
//   - Requests beyond the largest class or 16-byte alignment are served
//     directly from the heap and not recycled
//   - Hit/miss/in-use accounting
//
// A Pool is safe for concurrent use; it guards its freelists with a mutex.
package slab
