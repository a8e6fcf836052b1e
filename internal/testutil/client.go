package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/cinemood/internal/app"
	"github.com/oggyb/cinemood/internal/auth"
	"github.com/oggyb/cinemood/internal/cache"
	"github.com/oggyb/cinemood/internal/config"
	"github.com/oggyb/cinemood/internal/logger"
	"github.com/oggyb/cinemood/internal/router"
)

// TestSecretKey signs every token issued in tests.
const TestSecretKey = "test-secret-key-for-testing"

// NewTokenManager returns the token manager used by NewClient.
func NewTokenManager(t testing.TB) *auth.TokenManager {
	t.Helper()
	m, err := auth.NewTokenManager(TestSecretKey, 30*time.Minute)
	require.NoError(t, err)
	return m
}

// NewRedis starts a miniredis for the test and returns a cache bound to it.
func NewRedis(t testing.TB) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	rc := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

// NewAppContext wires store, a private Redis and the test token manager.
func NewAppContext(t testing.TB, store *Store) *app.AppContext {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.ENV = "test"
	cfg.DB.Driver = "sqlite"
	cfg.DB.DSN = store.DSN
	cfg.JWT.Secret = TestSecretKey
	cfg.JWT.Expiry = 30 * time.Minute

	rc, _ := NewRedis(t)
	return app.New(cfg, store.DB, store, rc, NewTokenManager(t), logger.Discard())
}

// Client drives the API in-process.
type Client struct {
	t      testing.TB
	App    *app.AppContext
	Engine *gin.Engine
}

// NewClient builds the API with store injected as its session provider.
func NewClient(t testing.TB, store *Store) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	appCtx := NewAppContext(t, store)
	engine, err := router.New(appCtx)
	require.NoError(t, err)
	return &Client{t: t, App: appCtx, Engine: engine}
}

// Tokens returns the manager that signs tokens the client accepts.
func (c *Client) Tokens() *auth.TokenManager {
	return c.App.Tokens
}

// Do sends a request. A non-nil body is encoded as JSON.
func (c *Client) Do(method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	rec := httptest.NewRecorder()
	c.Engine.ServeHTTP(rec, req)
	return rec
}

func (c *Client) Get(path string, header http.Header) *httptest.ResponseRecorder {
	return c.Do(http.MethodGet, path, nil, header)
}

func (c *Client) Post(path string, body any, header http.Header) *httptest.ResponseRecorder {
	return c.Do(http.MethodPost, path, body, header)
}

func (c *Client) Put(path string, body any, header http.Header) *httptest.ResponseRecorder {
	return c.Do(http.MethodPut, path, body, header)
}

func (c *Client) Patch(path string, body any, header http.Header) *httptest.ResponseRecorder {
	return c.Do(http.MethodPatch, path, body, header)
}

func (c *Client) Delete(path string, header http.Header) *httptest.ResponseRecorder {
	return c.Do(http.MethodDelete, path, nil, header)
}

// Envelope is the decoded API reply; Data is left raw for the caller.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
}

// Decode parses rec as an envelope and, when dst is non-nil, its data.
func Decode(t testing.TB, rec *httptest.ResponseRecorder, dst any) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	if dst != nil {
		require.NoError(t, json.Unmarshal(env.Data, dst))
	}
	return env
}
