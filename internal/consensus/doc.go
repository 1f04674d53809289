// Package consensus turns a divergent computation into one canonical output.
//
// A divergent Operation may legitimately produce different results on
// different executions because it calls a generative model or fetches live
// content. A Policy (the reconciliation strategy) describes how independently
// obtained results are compared:
//
//   - StrictPolicy accepts only byte-identical results after RFC 8785 JSON
//     canonicalization. Any divergence rejects the round.
//   - NonComparativePolicy lets a leader derive a candidate from its own
//     execution and asks each validator, holding its own independent
//     execution, whether the candidate meets a natural-language criteria
//     string. A strict majority of validators must accept.
//
// Decide is the pure quorum rule shared by every host. Validator is the
// in-process host: it runs the leader and the validators one after another
// and retries with a fresh leader up to MaxRounds. The Temporal workflows in
// internal/workflow are the distributed host and reuse the same Policy and
// Decide. Failing to agree is fatal and reported as ErrNoConsensus; no host
// ever falls back to a single execution's output.
package consensus
