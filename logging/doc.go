// Package logging provides a tiny abstraction over slog so the rest of the
// module can depend on a minimal interface (Logger) while letting embedding
// applications plug any structured logger. It also offers a contextual
// RunLogger with run/plan scoped attributes and domain helpers for tool
// dispatch and model calls.
package logging
