// Package core contains the canonical token-acquisition contracts, entities,
// and orchestration logic. Authority and storage adapters must depend on this
// package; core must not depend on protocol-specific or transport-specific
// adapters.
package core
