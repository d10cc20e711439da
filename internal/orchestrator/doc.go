// Package orchestrator coordinates the four-phase content-production
// pipeline: directory selection, content strategy, content generation,
// and TOC management.
//
// The Runner owns phase ordering and readiness gating. Each phase writes
// its outcome into a single Result record; phases 2-4 contain their own
// failures so a partial run is an inspectable outcome, not an error.
// Only Phase 1 is fatal, because every later phase depends on the
// working directory it establishes.
package orchestrator
