package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_PassphraseCache(t *testing.T) {
	cache := NewPassphraseCache()

	_, ok := cache.Get("AAAA")
	assert.False(t, ok)

	cache.Put("AAAA", "hunter2")
	passphrase, ok := cache.Get("AAAA")
	assert.True(t, ok)
	assert.Equal(t, "hunter2", passphrase)
	assert.Equal(t, 1, cache.Len())

	cache.Put("BBBB", "other")
	assert.Equal(t, 2, cache.Len())

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
	_, ok = cache.Get("AAAA")
	assert.False(t, ok)
}
