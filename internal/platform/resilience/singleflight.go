package resilience

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// SingleFlight deduplicates concurrent calls for the same key.
type SingleFlight struct {
	group singleflight.Group
}

// Forget drops an in-flight key so the next call starts a fresh request.
func (g *SingleFlight) Forget(key string) {
	g.group.Forget(key)
}

// DoContext shares one fn call between concurrent callers of key. fn runs detached from the
// callers' cancellation; a caller whose ctx ends stops waiting without failing the others.
func (g *SingleFlight) DoContext(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	shared := g.group.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-shared:
		return res.Val, res.Err
	}
}
