package distance

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"sync"
)

// SimulatedService stands in for a real distance provider. Each distinct
// pair maps to a stable pseudo distance in [1, 10] derived from the seed;
// identical cities are 0 apart. A non-zero failure rate makes calls fail
// at random with ErrUnavailable.
type SimulatedService struct {
	seed        uint64
	failureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedService creates a simulated service.
func NewSimulatedService(seed uint64, failureRate float64) *SimulatedService {
	return &SimulatedService{
		seed:        seed,
		failureRate: failureRate,
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (s *SimulatedService) QueryDistance(ctx context.Context, from, to string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if from == to {
		return 0, nil
	}

	if s.failureRate > 0 {
		s.mu.Lock()
		fail := s.rng.Float64() < s.failureRate
		s.mu.Unlock()
		if fail {
			return 0, ErrUnavailable
		}
	}

	p := NewPair(from, to)
	h := fnv.New64a()
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], s.seed)
	h.Write(seed[:])
	h.Write([]byte(p.String()))

	return 1 + int(h.Sum64()%10), nil
}
