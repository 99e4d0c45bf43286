// Package cuid mints collision-resistant node identifiers at plan time.
// IDs are URL-safe and lexicographically sortable by creation time, so
// freshly planned rows sort in insertion order and can be referenced by
// later mutactions in the same plan.
package cuid

import (
	"encoding/base32"
	"fmt"

	"github.com/google/uuid"
)

const prefix = "c"

// encoding is lowercase base32hex without padding. base32hex preserves
// byte-wise ordering, which keeps the time-ordered UUID sortable after
// encoding.
var encoding = base32.NewEncoding("0123456789abcdefghijklmnopqrstuv").WithPadding(base32.NoPadding)

// Generator produces node IDs. Implementations must be safe for concurrent
// use across planner invocations.
type Generator interface {
	New() string
}

// UUIDGenerator derives IDs from time-ordered UUIDs (version 7). The
// millisecond timestamp prefix provides sortability; the 74 random bits
// provide collision resistance across distributed planners.
type UUIDGenerator struct{}

// New returns a fresh 27-character ID, e.g. "c0632kq3vvjpj6caf5n2q1d0v7g".
func (UUIDGenerator) New() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the entropy source does; fall back to the
		// non-sortable random variant rather than returning an empty ID.
		id = uuid.New()
	}
	return prefix + encoding.EncodeToString(id[:])
}

// Sequence is a deterministic Generator for tests: it yields "<seed>1",
// "<seed>2", ... so planned IDs are stable across runs.
type Sequence struct {
	seed string
	n    int
}

// NewSequence returns a Sequence generator with the given seed prefix.
func NewSequence(seed string) *Sequence {
	return &Sequence{seed: seed}
}

func (s *Sequence) New() string {
	s.n++
	return fmt.Sprintf("%s%d", s.seed, s.n)
}
