// Package events defines the event topics and payload types exchanged over
// the bus: editor lifecycle notifications consumed by the document tracker,
// and the annotation-state streams the tracker republishes.
package events
