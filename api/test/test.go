// Package test runs the whole API against throwaway Postgres and Redis
// containers.
package test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/v2"
	"github.com/fullscopemd/storefront/api"
	"github.com/fullscopemd/storefront/cachegen"
	"github.com/fullscopemd/storefront/config"
	"github.com/fullscopemd/storefront/core/site"
	"github.com/fullscopemd/storefront/database"
	"github.com/fullscopemd/storefront/rate"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const AdminToken = "test-admin-token"

type TestEnv struct {
	*httptest.Server
	DB    *sqlx.DB
	Redis *redis.Client
	Gate  *cachegen.Gate
}

// NewTestEnv starts the containers, migrates the database and serves the
// API. Everything is torn down when the test ends.
func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	t.Helper()

	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("connecting to docker: %w", err)
	}
	pool.MaxWait = 2 * time.Minute

	dbCfg := config.DB{
		User:       "postgres",
		Password:   "postgres",
		Name:       name,
		DisableTLS: true,
	}

	pg, err := run(t, pool, &dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_USER=" + dbCfg.User,
			"POSTGRES_PASSWORD=" + dbCfg.Password,
			"POSTGRES_DB=" + dbCfg.Name,
		},
	})
	if err != nil {
		return nil, err
	}
	dbCfg.Host = pg.GetHostPort("5432/tcp")

	var db *sqlx.DB
	err = pool.Retry(func() error {
		if db, err = database.Open(dbCfg); err != nil {
			return err
		}
		return db.Ping()
	})
	if err != nil {
		return nil, fmt.Errorf("waiting for postgres: %w", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	rd, err := run(t, pool, &dockertest.RunOptions{Repository: "redis", Tag: "7-alpine"})
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{Addr: rd.GetHostPort("6379/tcp")})
	t.Cleanup(func() { rdb.Close() })
	if err := pool.Retry(func() error { return rdb.Ping(context.Background()).Err() }); err != nil {
		return nil, fmt.Errorf("waiting for redis: %w", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	gate := cachegen.New(cachegen.NewRedisStore(rdb, uuid.NewString()), cachegen.WithLogger(log))

	sessionStore := postgresstore.New(db.DB)
	t.Cleanup(sessionStore.StopCleanup)

	sm := scs.New()
	sm.Store = sessionStore

	limiter := rate.NewLimiter(100, 1, rate.Every(time.Millisecond))
	t.Cleanup(limiter.Close)

	srv := httptest.NewServer(api.APIMux(api.APIConfig{
		Log:        log,
		DB:         db,
		Session:    sm,
		Gate:       gate,
		AdminToken: AdminToken,
		Limiter:    limiter,
		Site: site.Config{
			Brand:   "FullScopeMD",
			BaseURL: "https://fullscopemd.test",
			TTL:     site.TTL{Nav: time.Hour, List: 5 * time.Minute, Detail: 10 * time.Minute},
		},
	}))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	srv.Client().Jar = jar

	return &TestEnv{Server: srv, DB: db, Redis: rdb, Gate: gate}, nil
}

func run(t *testing.T, pool *dockertest.Pool, opts *dockertest.RunOptions) (*dockertest.Resource, error) {
	res, err := pool.RunWithOptions(opts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, fmt.Errorf("starting %s: %w", opts.Repository, err)
	}
	res.Expire(300)

	t.Cleanup(func() {
		if err := pool.Purge(res); err != nil {
			t.Logf("purging %s: %v", opts.Repository, err)
		}
	})
	return res, nil
}

// Do sends a request with the env's cookie-carrying client.
func (env *TestEnv) Do(t *testing.T, r *http.Request) *http.Response {
	t.Helper()

	w, err := env.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { w.Body.Close() })
	return w
}
