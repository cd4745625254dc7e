// Package git computes the source-control data that annotation renderers
// overlay on documents: per-line blame, working-tree diffs and file history.
//
// The package shells out to the git binary. It deliberately offers only the
// read operations the annotation pipeline needs; mutating the repository is
// the user's business, not this tool's.
package git
