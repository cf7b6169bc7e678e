// Package filesystem provides the on-disk vault: a directory tree of
// Markdown and plain-text notes.
//
// Store lists and reads documents and keeps a cached catalog that Watch
// refreshes on filesystem events. NoteWriter creates new notes without ever
// overwriting an existing file.
package filesystem
