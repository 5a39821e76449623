// Package mock provides a deterministic test double for the ai.Embedder
// interface. The default behavior hashes the input text into a stable
// pseudo-random vector, so tests get repeatable similarity orderings
// without a live embedding service.
package mock
