// Package cache holds the injected byte caches used by the voice pipeline.
package cache

import (
	"context"

	"github.com/xpanvictor/xarvis-voice/pkg/io/tts"
)

// ErrMiss is returned by Get for an absent or expired key.
var ErrMiss = tts.ErrCacheMiss

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Len(ctx context.Context) int
}
