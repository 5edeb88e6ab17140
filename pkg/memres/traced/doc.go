// Package traced provides a memory resource decorator that logs every
// allocation and deallocation through a structured hclog logger.
//
// Tracing runs at hclog's Trace level so a production logger configured at
// Info or above pays only a level check per call. Allocation failures are
// logged at Error level regardless.
package traced
