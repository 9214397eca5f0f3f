package evaluate

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ppiankov/plancours/internal/cache"
	"github.com/ppiankov/plancours/internal/model"
)

// defaultCallTimeout bounds a shared call once it no longer follows any caller
const defaultCallTimeout = 2 * time.Minute

// Cached memoizes successful verdicts of the wrapped evaluator. Identical
// concurrent requests share one underlying call; the call is detached from
// the caller that started it, and each caller stops waiting on its own ctx.
type Cached struct {
	next        Evaluator
	cache       cache.Cache
	namespace   string
	ttl         time.Duration
	callTimeout time.Duration
	group       singleflight.Group
}

// NewCached wraps next. namespace separates entries of different models.
func NewCached(next Evaluator, c cache.Cache, namespace string, ttl time.Duration) *Cached {
	return &Cached{
		next:      next,
		cache:     c,
		namespace: namespace,
		ttl:       ttl,

		callTimeout: defaultCallTimeout,
	}
}

func (c *Cached) Engine() model.Engine { return c.next.Engine() }

func (c *Cached) Evaluate(ctx context.Context, in Input) (model.Verdict, error) {
	key := cache.Key(string(c.next.Engine()), c.namespace, in.Question, in.Rule, in.Response)

	if data, ok := c.cache.Get(key); ok {
		var v model.Verdict
		if err := json.Unmarshal(data, &v); err == nil && v.Status.Valid() {
			return v, nil
		}
		_ = c.cache.Delete(key)
	}

	ch := c.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.callTimeout)
		defer cancel()

		v, err := c.next.Evaluate(callCtx, in)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(v); err == nil {
			_ = c.cache.Set(key, data, c.ttl)
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return model.Verdict{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return model.Verdict{}, res.Err
		}
		return res.Val.(model.Verdict), nil
	}
}
