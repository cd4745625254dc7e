// Package editor defines the contract the document tracker consumes from
// its host editor: open buffers, the active editor, lifecycle notifications
// and command-context flags.
//
// The tracker never talks to a concrete editor directly; hosts publish
// lifecycle events on the shared bus and satisfy the Host interface for the
// operations the tracker initiates (opening a document by path, querying
// the active editor, flipping context flags). The memory subpackage holds
// a complete in-process implementation used by tests and headless tooling.
package editor
