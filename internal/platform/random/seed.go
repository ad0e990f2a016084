// Package random builds the uniform random sources used for committee draws.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
)

// NewSeed reads a seed from crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// Source is a mutex-guarded PCG generator safe for concurrent draws.
// *rand.Rand alone is not safe for concurrent use.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSource(seed uint64) *Source {
	return &Source{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewSourceFromEntropy seeds from crypto/rand when seed is zero.
func NewSourceFromEntropy(seed uint64) (*Source, error) {
	if seed != 0 {
		return NewSource(seed), nil
	}
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return NewSource(seed), nil
}

// IntN returns a uniform value in [0, n). It panics if n <= 0.
func (s *Source) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}
