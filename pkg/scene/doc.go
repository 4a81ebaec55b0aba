// Package scene is the in-memory object graph the fitting tools operate on.
// It plays the part of the host application's scene: named objects with a
// world transform and shared mesh data, a selection with an active object,
// mesh user counting with orphan removal, and object/edit modes.
package scene
