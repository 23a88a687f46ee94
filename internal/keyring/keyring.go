// Package keyring manages a ring of bearer tokens with rotation, so an
// adapter can spread authenticated traffic across several API tokens.
package keyring

import (
	"fmt"
	"sync"
	"time"
)

// Token is a single bearer credential in the ring.
type Token struct {
	ID         string
	Value      string
	Disabled   bool
	LastUsed   time.Time
	ErrorCount int
}

// RotationStrategy selects when the ring advances to the next token.
type RotationStrategy int

const (
	// RotationRoundRobin rotates only when Rotate is called explicitly.
	RotationRoundRobin RotationStrategy = iota
	// RotationOnError rotates whenever the current token sees an error.
	RotationOnError
)

// KeyRing holds bearer tokens and hands out the current usable one.
// Safe for concurrent use.
type KeyRing struct {
	mu       sync.RWMutex
	tokens   []*Token
	current  int
	strategy RotationStrategy
}

// New creates a key ring from the given tokens. The tokens are copied;
// the caller's slice is not retained.
func New(tokens []*Token, strategy RotationStrategy) *KeyRing {
	copied := make([]*Token, len(tokens))
	for i, t := range tokens {
		copied[i] = &Token{
			ID:       t.ID,
			Value:    t.Value,
			Disabled: t.Disabled,
			LastUsed: t.LastUsed,
		}
	}
	return &KeyRing{tokens: copied, strategy: strategy}
}

// Current returns the active token, skipping disabled entries.
// Returns nil when no usable token exists.
func (k *KeyRing) Current() *Token {
	k.mu.RLock()
	defer k.mu.RUnlock()

	for i := 0; i < len(k.tokens); i++ {
		idx := (k.current + i) % len(k.tokens)
		if !k.tokens[idx].Disabled {
			return k.tokens[idx]
		}
	}
	return nil
}

// Rotate advances to the next enabled token.
func (k *KeyRing) Rotate() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.rotateLocked()
}

func (k *KeyRing) rotateLocked() {
	if len(k.tokens) == 0 {
		return
	}
	start := k.current
	for {
		k.current = (k.current + 1) % len(k.tokens)
		if !k.tokens[k.current].Disabled || k.current == start {
			return
		}
	}
}

// OnError records a failure against the current token and rotates when
// the strategy calls for it.
func (k *KeyRing) OnError() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if len(k.tokens) == 0 {
		return
	}
	k.tokens[k.current].ErrorCount++
	if k.strategy == RotationOnError {
		k.rotateLocked()
	}
}

// MarkUsed stamps the current token with the current time.
func (k *KeyRing) MarkUsed() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if len(k.tokens) == 0 {
		return
	}
	k.tokens[k.current].LastUsed = time.Now()
}

// Disable takes the token with the given ID out of rotation.
func (k *KeyRing) Disable(id string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, t := range k.tokens {
		if t.ID == id {
			t.Disabled = true
			return
		}
	}
}

// Enable returns the token with the given ID to rotation and clears its
// error count.
func (k *KeyRing) Enable(id string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, t := range k.tokens {
		if t.ID == id {
			t.Disabled = false
			t.ErrorCount = 0
			return
		}
	}
}

// Add appends a token to the ring; duplicate IDs are ignored.
func (k *KeyRing) Add(token *Token) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, existing := range k.tokens {
		if existing.ID == token.ID {
			return
		}
	}
	k.tokens = append(k.tokens, &Token{ID: token.ID, Value: token.Value})
}

// Remove deletes the token with the given ID from the ring.
func (k *KeyRing) Remove(id string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for i, t := range k.tokens {
		if t.ID == id {
			k.tokens = append(k.tokens[:i], k.tokens[i+1:]...)
			if k.current >= len(k.tokens) {
				k.current = 0
			}
			return
		}
	}
}

// String returns a masked representation safe for logging.
func (t *Token) String() string {
	return fmt.Sprintf("Token{ID:%s, Value:%s}", t.ID, mask(t.Value))
}

func mask(v string) string {
	if len(v) <= 8 {
		return "****"
	}
	return v[:4] + "****" + v[len(v)-4:]
}
