// Package tracker maintains per-document annotation state for open text
// buffers: which documents are tracked by source control, whether their
// cached blame/diff/log bundles are still valid, and when dirty documents
// settle into an idle state worth re-annotating.
//
// The DocumentTracker owns a cache of TrackedDocument entries keyed both by
// the live buffer handle and by a canonical state key, reacts to host
// editor lifecycle events, and republishes three streams on the bus:
// blame-state changed, dirty-state changed and dirty-idle triggered.
// Renderers subscribe to those streams instead of watching raw editor
// events, which arrive in bursts far too fast to re-annotate on.
package tracker
