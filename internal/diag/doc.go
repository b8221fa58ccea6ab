// Package diag defines the diagnostic model shared by the entry loader, the
// weaver and the driver.
//
// A Diagnostic is data only: severity, a compact Code with a stable string
// ID, a message, and the source.Pos it refers to. Producers emit through a
// Reporter; BagReporter collects into a Bag, which sorts and deduplicates for
// deterministic output. Rendering lives in internal/report.
//
// Weaving never fails on bad positions. Entries that cannot be placed, and the
// findings of audit mode, travel as diagnostics so the caller can surface an
// explicit "N markers could not be placed" instead of a shorter marker list.
package diag
