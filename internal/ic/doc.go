// Package ic classifies V8 inline-cache state codes and ranks them by severity.
//
// The trace encodes each IC state as a single character. Classify turns that
// character into a State and refuses anything outside the known table: an
// unfamiliar code means the log was produced by an unsupported V8 version, so
// it is reported as an error instead of being folded into Unknown.
//
// SeverityOf maps states to tiers:
//
//	uninitialized, premonomorphic, monomorphic, recompute_handler -> MinSeverity
//	polymorphic                                                   -> MinSeverity+1
//	megamorphic, generic                                          -> MinSeverity+2
//	unknown                                                       -> UnknownSeverity
//
// Both functions are pure and safe for concurrent use.
package ic
