package distance

import (
	"math"
	"strconv"
)

// Unreachable is the sentinel distance used when a pair cannot be resolved.
// It sorts after every real distance.
const Unreachable = math.MaxInt

// Pair is an unordered pair of city names, normalized so that A <= B.
type Pair struct {
	A, B string
}

// NewPair builds the normalized pair for two cities.
func NewPair(a, b string) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// String returns a stable key for the pair. Both names are quoted so a
// separator inside a city name cannot make two pairs collide.
func (p Pair) String() string {
	return strconv.Quote(p.A) + "|" + strconv.Quote(p.B)
}
