package common

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandByteArray(t *testing.T) {
	for _, size := range []int{0, 12, 16, 32} {
		b := GenerateRandByteArray(size)
		assert.Len(t, b, size)
	}

	a := GenerateRandByteArray(32)
	b := GenerateRandByteArray(32)
	assert.False(t, bytes.Equal(a, b), "two device secrets should not collide")
	assert.NotEqual(t, make([]byte, 32), a)
}

func TestWipeByteArray(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"password", []byte("correct horse battery staple")},
		{"key", GenerateRandByteArray(32)},
		{"empty", []byte{}},
		{"nil", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() { WipeByteArray(tt.in) })
			assert.Equal(t, make([]byte, len(tt.in)), append([]byte{}, tt.in...))
		})
	}
}

func TestWipeByteArray_SharedBacking(t *testing.T) {
	buf := []byte("secret-and-more")
	WipeByteArray(buf[:6])

	assert.Equal(t, make([]byte, 6), buf[:6])
	assert.Equal(t, "-and-more", string(buf[6:]))
}
