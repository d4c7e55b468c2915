// Package facestudio is the element codec and history engine of a watch-face
// design editor.
//
// A Studio owns the codec registry, the custom property allow-list, the
// authoritative layer order, the undo/redo history and the shared time
// ticker. Everything operates on a surface.Surface that is attached once the
// host canvas exists; mutating calls before that return an errs.CodeNotReady
// error.
//
// Designs are persisted as element.Document values: one flat element.Config
// per element, ordered back to front by orderIds.
package facestudio
