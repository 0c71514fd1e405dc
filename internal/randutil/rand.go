// Package randutil derives reproducible rand/v2 generators from a
// single int64 seed. Dataset splits and weight initialization both go
// through here so one configured seed pins down the whole run.
package randutil

import rand "math/rand/v2"

const seedSpread = 0x9e3779b97f4a7c15 // golden-ratio increment

// New returns a *rand.Rand seeded deterministically from seed. The
// two 64-bit PCG seeds are derived with a splitmix-style finalizer so
// nearby seeds still produce unrelated streams.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(scramble(u), scramble(u+seedSpread)))
}

func scramble(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
