// Package source provides module source text to the loader.
//
// The registry never performs I/O itself; a Provider injected with
// loader.WithProvider answers require(id) calls made without a source
// argument. Providers exist for in-memory maps, directories matched by
// doublestar patterns, and URLs fetched over HTTP, and a Manifest file
// combines them.
package source
