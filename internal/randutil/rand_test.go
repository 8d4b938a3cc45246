package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	a := New(99)
	b := New(99)
	for i := 0; i < 16; i++ {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestNewDiffersBySeed(t *testing.T) {
	assert.NotEqual(t, New(1).Uint64(), New(2).Uint64())
}

func TestNewCryptoRange(t *testing.T) {
	rng := NewCrypto()
	for i := 0; i < 100; i++ {
		n := rng.IntN(52)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 52)
	}
}
