// Package bytestore implements the byte-store external collaborator (spec
// §6): a minimal filesystem-shaped contract the crash reporter uses to
// persist a single record to a well-known path, idempotently, with no
// assumption about the underlying medium (a real target might back this
// with a tiny internal flash filesystem; this package provides memory and
// host-filesystem implementations).
package bytestore

import "io"

// Store is the narrow filesystem contract spec §6 describes: create a
// directory (idempotent), open a file in create+truncate mode, write,
// close. Open Question decision 2 (DESIGN.md) resolves the erase callback
// to this two-argument form: truncate decides whether erasing a missing
// file succeeds or is an error; an existing file is removed either way.
type Store interface {
	// MkdirAll creates path and any missing parents; succeeds if path
	// already exists as a directory.
	MkdirAll(path string) error
	// Create opens path in create+truncate mode, returning a handle the
	// caller writes to and then closes. Any existing file at path is
	// discarded.
	Create(path string) (io.WriteCloser, error)
	// Erase removes the file at path. If truncate is true and the file
	// does not exist, Erase succeeds without error (the end state, an
	// absent file, already holds); if truncate is false and the file does
	// not exist, Erase returns an error, matching a strict "this must have
	// existed" delete.
	Erase(path string, truncate bool) error
}
