// Package memory provides in-memory implementations of the vector store and
// configuration store ports. They back the "memory" store backend and the
// service tests.
package memory
