package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/dgraph-io/ristretto"
)

// CachedGenerator memoizes completions by prompt pair. Identical prompts
// within one process return the first successful completion.
type CachedGenerator struct {
	next  TextGenerator
	cache *ristretto.Cache
}

func NewCachedGenerator(next TextGenerator, maxEntries int64) (*CachedGenerator, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &CachedGenerator{next: next, cache: cache}, nil
}

func cacheKey(system, user string) string {
	h := sha256.New()
	h.Write([]byte(system))
	h.Write([]byte{0})
	h.Write([]byte(user))
	return hex.EncodeToString(h.Sum(nil))
}

func (g *CachedGenerator) Complete(ctx context.Context, system, user string) (string, error) {
	key := cacheKey(system, user)
	if v, ok := g.cache.Get(key); ok {
		if s, ok := v.(string); ok {
			return s, nil
		}
	}

	out, err := g.next.Complete(ctx, system, user)
	if err != nil {
		return "", err
	}
	g.cache.Set(key, out, 1)
	g.cache.Wait()
	return out, nil
}

func (g *CachedGenerator) Close() {
	g.cache.Close()
}
