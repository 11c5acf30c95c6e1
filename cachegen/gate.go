package cachegen

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// VersionKey is where the generation counter lives in the store.
const VersionKey = "site_cache_v"

// Gate hands out the current cache generation and builds keys under it.
type Gate struct {
	store Store
	codec Codec
	log   logrus.FieldLogger

	// seen is the highest generation this process has read or issued.
	seen atomic.Int64
}

type Option func(*Gate)

func WithCodec(c Codec) Option {
	return func(g *Gate) { g.codec = c }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(g *Gate) { g.log = log }
}

func New(store Store, opts ...Option) *Gate {
	g := &Gate{
		store: store,
		codec: Msgpack{},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		l := logrus.New()
		l.SetOutput(nopWriter{})
		g.log = l
	}
	return g
}

// CurrentVersion returns the shared generation, initialising it to 1 when
// absent. When the store cannot be reached it returns the last generation
// this process saw, so reads keep working and fall through to their
// builders.
func (g *Gate) CurrentVersion(ctx context.Context) int64 {
	for attempt := 0; attempt < 2; attempt++ {
		b, err := g.store.Get(ctx, VersionKey)
		switch {
		case err == nil:
			v, perr := strconv.ParseInt(string(b), 10, 64)
			if perr != nil {
				CacheErrors.WithLabelValues("version").Inc()
				g.log.WithError(perr).Warn("cachegen: unreadable cache version")
				return g.fallbackVersion()
			}
			g.observe(v)
			return v

		case errors.Is(err, ErrMiss):
			added, aerr := g.store.Add(ctx, VersionKey, []byte("1"), 0)
			if aerr != nil {
				CacheErrors.WithLabelValues("version").Inc()
				g.log.WithError(aerr).Warn("cachegen: cannot initialise cache version")
				return g.fallbackVersion()
			}
			if added {
				g.observe(1)
				return 1
			}
			// Someone else initialised it first; read their value.

		default:
			CacheErrors.WithLabelValues("version").Inc()
			g.log.WithError(err).Warn("cachegen: cannot read cache version")
			return g.fallbackVersion()
		}
	}
	return g.fallbackVersion()
}

// Bump invalidates every key built under earlier generations.
//
// The increment is atomic in the store. When it fails, or when it yields a
// value not above what this process already saw (the counter was evicted),
// or when it yields 1 (the store created the counter from nothing, which is
// the generation CurrentVersion issues lazily), the counter is forced to a value above every generation this process
// knows of. That reset path is best effort: two processes resetting at once
// may issue the same generation.
func (g *Gate) Bump(ctx context.Context) int64 {
	before := g.seen.Load()

	v, err := g.store.Incr(ctx, VersionKey)
	if err == nil && v > before && v > 1 {
		Bumps.WithLabelValues("incr").Inc()
		g.observe(v)
		return v
	}

	return g.reset(ctx, before, v, err)
}

func (g *Gate) reset(ctx context.Context, before, got int64, incrErr error) int64 {
	floor := before + 1
	if floor < 2 {
		floor = 2
	}

	log := g.log.WithFields(logrus.Fields{
		"floor": floor,
		"got":   got,
	})
	if incrErr != nil {
		log = log.WithError(incrErr)
	}

	if err := g.store.Set(ctx, VersionKey, []byte(strconv.FormatInt(floor, 10)), 0); err != nil {
		CacheErrors.WithLabelValues("version").Inc()
		log.WithField("set_error", err).Error("cachegen: cannot reset cache version")
	} else {
		log.Warn("cachegen: cache version reset")
	}

	Bumps.WithLabelValues("reset").Inc()
	g.observe(floor)
	return floor
}

// Key composes a cache key as "{version}:{namespace}:{part}:{part}...".
func (g *Gate) Key(version int64, namespace string, parts ...any) string {
	return Key(version, namespace, parts...)
}

// VersionedKey is Key under the current generation.
func (g *Gate) VersionedKey(ctx context.Context, namespace string, parts ...any) string {
	return Key(g.CurrentVersion(ctx), namespace, parts...)
}

func Key(version int64, namespace string, parts ...any) string {
	ps := make([]string, len(parts))
	for i, p := range parts {
		ps[i] = fmt.Sprint(p)
	}
	return strconv.FormatInt(version, 10) + ":" + namespace + ":" + strings.Join(ps, ":")
}

func (g *Gate) fallbackVersion() int64 {
	if v := g.seen.Load(); v > 0 {
		return v
	}
	return 1
}

func (g *Gate) observe(v int64) {
	for {
		cur := g.seen.Load()
		if v <= cur {
			return
		}
		if g.seen.CompareAndSwap(cur, v) {
			Version.Set(float64(v))
			return
		}
	}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
