// Package diag defines the diagnostic model shared by the frontend, the
// resolution pass and the rename checks.
//
// Producers emit through a Reporter and never stop on a finding; the pass
// keeps resolving siblings after a report. A Bag is the usual sink. Rendering
// lives in internal/diagfmt.
//
// A Diagnostic has a Severity, a numeric Code with a stable string form, a
// short Message, a Primary span and optional Notes pointing at related
// source ranges (for example the identifier a rename would collide with).
package diag
