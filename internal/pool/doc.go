// Package pool provides reusable byte buffers for part reads.
//
// Splitting a file into parts needs one chunk-sized buffer per session;
// pooling them keeps repeated upload runs from churning the heap.
package pool
