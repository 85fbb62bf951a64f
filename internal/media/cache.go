package media

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds how many probe results CachedProber keeps.
const DefaultCacheSize = 512

// CachedProber memoizes successful probes. Failures are not cached so a
// source that appears later can still be picked up.
type CachedProber struct {
	next  Prober
	cache *lru.Cache[string, ProbeResult]
}

func NewCachedProber(next Prober, size int) (*CachedProber, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, ProbeResult](size)
	if err != nil {
		return nil, fmt.Errorf("create probe cache: %w", err)
	}
	return &CachedProber{next: next, cache: c}, nil
}

func (p *CachedProber) Probe(ctx context.Context, src string) (*ProbeResult, error) {
	if r, ok := p.cache.Get(src); ok {
		return &r, nil
	}
	r, err := p.next.Probe(ctx, src)
	if err != nil {
		return nil, err
	}
	p.cache.Add(src, *r)
	return r, nil
}

func (p *CachedProber) Len() int {
	return p.cache.Len()
}
