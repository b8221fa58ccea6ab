// Package weave places entry markers into a rendered source document.
//
// The weaver walks the document in pre-order with a (line, column) cursor that
// advances only over text. Each text node is split on '\n'; after every
// fragment the front of the queue is checked, and an entry attaches when the
// cursor is on its line at or past its column. The highlighter decides where
// text nodes end, so ">=" picks the first boundary that reaches the target
// instead of demanding an exact offset.
//
// Markers are inserted as siblings after the text node (chained in queue order
// when several attach at once) and the walk resumes from the deepest last node
// of the last marker, so inserted subtrees are never scanned.
//
// A weave owns its tree and queue for the duration of the call. Separate files
// may be woven concurrently by separate calls.
package weave
