package session

import (
	"sync"
)

// PassphraseCache maps keypair fingerprints to passphrases already
// validated during this run. It is volatile and process-scoped, never
// written to durable storage, and must be cleared on every exit path.
type PassphraseCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func NewPassphraseCache() *PassphraseCache {
	return &PassphraseCache{entries: map[string]string{}}
}

func (c *PassphraseCache) Get(fingerprint string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	passphrase, ok := c.entries[fingerprint]
	return passphrase, ok
}

// Put stores a passphrase for a fingerprint. Callers must only store
// values already validated against the actual private key.
func (c *PassphraseCache) Put(fingerprint string, passphrase string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fingerprint] = passphrase
}

func (c *PassphraseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]string{}
}

func (c *PassphraseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
