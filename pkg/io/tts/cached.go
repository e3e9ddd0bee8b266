package tts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
)

// Store is the byte cache a CachedSynthesizer reads through.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// ErrCacheMiss is returned by Store.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// CachedSynthesizer memoizes synthesized speech per (voice, text).
type CachedSynthesizer struct {
	next  Synthesizer
	store Store
	voice string
}

func NewCached(next Synthesizer, store Store, voice string) *CachedSynthesizer {
	return &CachedSynthesizer{next: next, store: store, voice: voice}
}

func (c *CachedSynthesizer) key(text string) string {
	sum := sha256.Sum256([]byte(c.voice + "\x00" + text))
	return "tts:" + hex.EncodeToString(sum[:])
}

// Synthesize implements Synthesizer. Cache failures fall through to the
// wrapped synthesizer.
func (c *CachedSynthesizer) Synthesize(ctx context.Context, text string) (Speech, error) {
	key := c.key(text)
	if raw, err := c.store.Get(ctx, key); err == nil {
		var sp Speech
		if json.Unmarshal(raw, &sp) == nil && len(sp.Audio) > 0 {
			return sp, nil
		}
	}

	sp, err := c.next.Synthesize(ctx, text)
	if err != nil {
		return Speech{}, err
	}
	if raw, err := json.Marshal(sp); err == nil {
		_ = c.store.Set(ctx, key, raw)
	}
	return sp, nil
}
