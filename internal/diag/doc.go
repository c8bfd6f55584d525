// Package diag defines the diagnostic model shared by the type core passes.
//
// Diagnostic is the central record: Severity, a numeric Code with a stable
// string form, a short Message, the Primary span and optional Notes. Passes
// emit through a Reporter (usually BagReporter) so they never depend on how
// diagnostics are stored or rendered; rendering lives in internal/diagfmt.
//
// The unifier and the exhaustiveness checker do not import this package:
// they return plain data (unify.Error, exhaust.Problem) and internal/driver
// turns that data into Diagnostics.
package diag
