// Package engine is the stage state machine. It owns the document being
// authored, routes step data into it, decides when the author may advance,
// and flushes debounced persistence before every transition.
package engine
