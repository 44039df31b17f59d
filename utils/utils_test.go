package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsString(t *testing.T) {
	assert.True(t, ContainsString([]string{"a", "b"}, "b"))
	assert.False(t, ContainsString([]string{"a", "b"}, "c"))
	assert.False(t, ContainsString(nil, "a"))
}

func TestRandomAlphabetString(t *testing.T) {
	str := RandomAlphabetString(16)
	assert.Len(t, str, 16)
	for _, r := range str {
		assert.True(t, r >= 'a' && r <= 'z')
	}
	assert.Empty(t, RandomAlphabetString(0))
}

func TestRandomToken(t *testing.T) {
	first := RandomToken(48)
	second := RandomToken(48)
	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
