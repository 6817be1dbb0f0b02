// Package orchestrator decides which promotional popup (if any) a page visit
// gets, arms its trigger, and records suppression on dismissal.
//
// One Engine serves one viewer. Its state is scoped to a route visit: every
// Visit call tears down the previous visit's listeners synchronously, bumps a
// generation counter, and re-runs candidate selection. A candidate fetch that
// resolves after a newer navigation is discarded by the generation guard, so
// a stale response can never arm a popup for the wrong route.
//
// Policy decisions, in order:
//   - private routes (/admin, /candidate, /company) run no popup logic at all
//   - the first well-formed, unsuppressed candidate wins at wiring time;
//     later candidates are never armed even if their trigger would fire sooner
//   - exit-intent candidates are skipped entirely on mobile
//   - at fire time suppression is re-checked before the popup goes active
//   - every failure path (fetch error, malformed candidate, store error)
//     degrades to "show nothing" — nothing propagates to the rendering layer
package orchestrator
