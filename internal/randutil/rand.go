// Package randutil derives reproducible random sources for simulations.
package randutil

import rand "math/rand/v2"

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed. Both PCG words
// are derived with splitmix so nearby seeds give unrelated streams.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(splitmix(u), splitmix(u+goldenRatio64)))
}

// HandSeed derives the seed for hand number hand of a run seeded with base.
// Each hand gets its own stream, so results do not depend on the order hands
// are played in.
func HandSeed(base int64, hand int) int64 {
	return int64(splitmix(uint64(base) + uint64(hand)*goldenRatio64))
}

func splitmix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
