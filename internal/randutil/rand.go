package randutil

import (
	crand "crypto/rand"
	"encoding/binary"
	rand "math/rand/v2"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Simulations and tests use it so that a seed replays the same shoe.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// NewCrypto returns a *rand.Rand whose every draw comes from crypto/rand.
// Interactive play shuffles with it so a shoe cannot be predicted from
// earlier hands.
func NewCrypto() *rand.Rand {
	return rand.New(cryptoSource{})
}

// cryptoSource implements rand.Source on top of the operating system CSPRNG.
type cryptoSource struct{}

func (cryptoSource) Uint64() uint64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		panic("randutil: crypto/rand unavailable: " + err.Error())
	}
	return binary.LittleEndian.Uint64(buf[:])
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
