// Package page implements the fixed-capacity record container that a record
// type allocates as it grows. A page knows nothing about files; the owning
// type decides when it is written.
package page
