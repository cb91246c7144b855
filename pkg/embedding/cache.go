package embedding

import (
	"context"
	"crypto/md5"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachingProvider memoizes single-text embeddings in process. Query
// embeddings repeat often (follow-up turns re-embed the same question
// variants), and upstream embedding calls dominate retrieval latency.
// Batch calls are passed through uncached: web chunks are unique per page.
type CachingProvider struct {
	inner EmbeddingProvider
	cache *cache.Cache
}

func NewCachingProvider(inner EmbeddingProvider) *CachingProvider {
	// Default expiration 1 hour, expired entries purged every 10 minutes.
	return &CachingProvider{
		inner: inner,
		cache: cache.New(1*time.Hour, 10*time.Minute),
	}
}

func (p *CachingProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	key := cacheKey(text, taskType)
	if x, found := p.cache.Get(key); found {
		return x.(*EmbeddingResponse), nil
	}

	res, err := p.inner.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, res, cache.DefaultExpiration)
	return res, nil
}

func (p *CachingProvider) GenerateBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	return p.inner.GenerateBatch(ctx, texts, taskType)
}

func cacheKey(text, taskType string) string {
	return fmt.Sprintf("%s:%x", taskType, md5.Sum([]byte(text)))
}
