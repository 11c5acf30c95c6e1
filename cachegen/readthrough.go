package cachegen

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// GetOrBuild returns the value cached at key, or runs build, stores its
// result for ttl and returns it. Cache failures of any kind are logged and
// treated as a miss; only build errors reach the caller, and they are never
// cached.
func GetOrBuild[T any](ctx context.Context, g *Gate, key string, ttl time.Duration, build func(context.Context) (T, error)) (T, error) {
	log := g.log.WithField("key", key)

	b, err := g.store.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		derr := g.codec.Unmarshal(b, &v)
		if derr == nil {
			CacheHits.Inc()
			return v, nil
		}
		CacheErrors.WithLabelValues("decode").Inc()
		log.WithError(derr).Warn("cachegen: dropping undecodable entry")

	case errors.Is(err, ErrMiss):

	default:
		CacheErrors.WithLabelValues("get").Inc()
		log.WithError(err).Warn("cachegen: cache read failed")
	}

	CacheMisses.Inc()

	v, err := build(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	enc, err := g.codec.Marshal(v)
	if err != nil {
		CacheErrors.WithLabelValues("encode").Inc()
		log.WithError(err).Warn("cachegen: cannot encode value")
		return v, nil
	}

	if err := g.store.Set(ctx, key, enc, ttl); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		log.WithFields(logrus.Fields{"ttl": ttl.String()}).WithError(err).Warn("cachegen: cache write failed")
	}
	return v, nil
}
