package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateClientID(t *testing.T) {
	id := GenerateClientID()

	assert.True(t, strings.HasPrefix(id, "nlt_"))
	assert.Len(t, id, len("nlt_")+16)
}

func TestGenerateAPIKey(t *testing.T) {
	key := GenerateAPIKey()

	assert.True(t, strings.HasPrefix(key, "key_"))
	assert.Len(t, key, len("key_")+32)
}

func TestGeneratedIdentifiersAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateClientID()
		assert.False(t, seen[id], "duplicate client id %s", id)
		seen[id] = true
	}
}
