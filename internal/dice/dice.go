// Package dice produces movement rolls for the turn scheduler.
//
// Rolls come from a math/rand source seeded once from crypto/rand. The
// sequence is reproducible from its seed, so rolls are fair but not secret:
// anyone who learns the seed can predict every roll.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
)

const (
	// DefaultCount is the number of dice rolled per turn.
	DefaultCount = 1
	// DefaultFaces is the number of faces per die.
	DefaultFaces = 6
)

// ErrInvalidSpec indicates a dice spec with non-positive count or faces.
var ErrInvalidSpec = errors.New("dice must have positive faces and count")

// Spec describes how many dice are rolled and how many faces each has.
type Spec struct {
	Count int
	Faces int
}

// DefaultSpec returns a single six-sided die.
func DefaultSpec() Spec {
	return Spec{Count: DefaultCount, Faces: DefaultFaces}
}

// Validate checks the spec.
func (s Spec) Validate() error {
	if s.Count <= 0 || s.Faces <= 0 {
		return ErrInvalidSpec
	}
	return nil
}

// Min is the smallest possible total.
func (s Spec) Min() int { return s.Count }

// Max is the largest possible total.
func (s Spec) Max() int { return s.Count * s.Faces }

// Roller produces a roll total for one turn.
type Roller interface {
	Roll() int
}

// RandRoller rolls Spec dice using a math/rand source. It is not safe for concurrent use.
type RandRoller struct {
	spec Spec
	rng  *rand.Rand
}

// NewRandRoller constructs a roller for spec using rng, or a crypto-seeded source when rng is nil.
func NewRandRoller(spec Spec, rng *rand.Rand) (*RandRoller, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		seed, err := NewSeed()
		if err != nil {
			return nil, err
		}
		rng = rand.New(rand.NewSource(seed))
	}
	return &RandRoller{spec: spec, rng: rng}, nil
}

// Roll returns the sum of Count dice, each in [1, Faces].
func (r *RandRoller) Roll() int {
	total := 0
	for i := 0; i < r.spec.Count; i++ {
		total += r.rng.Intn(r.spec.Faces) + 1
	}
	return total
}

// Sequence replays fixed values in order, wrapping at the end. Tests use it to script games.
type Sequence struct {
	values []int
	next   int
}

// NewSequence returns a roller that yields values in order.
func NewSequence(values ...int) *Sequence {
	return &Sequence{values: append([]int(nil), values...)}
}

// Roll returns the next scripted value.
func (s *Sequence) Roll() int {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
