package std

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SparkleBo/zchain/zerr"
	"github.com/SparkleBo/zchain/ziface"
)

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

// --- Router tests ---

func TestServer_ParamMatch(t *testing.T) {
	s := New(":0")
	called := false
	require.NoError(t, s.Route("GET", "/users/:id", func(ctx ziface.Context) error {
		called = true
		assert.Equal(t, "123", ctx.Param("id"))
		return ctx.String(200, "ok")
	}))

	rr := serve(s, "GET", "/users/123")
	assert.True(t, called)
	assert.Equal(t, 200, rr.Code)
}

func TestServer_Wildcard(t *testing.T) {
	s := New(":0")
	require.NoError(t, s.Route("GET", "/static/*", func(ctx ziface.Context) error { return ctx.String(200, "ok") }))

	assert.Equal(t, 200, serve(s, "GET", "/static/css/app.css").Code)
}

func TestServer_Group(t *testing.T) {
	s := New(":0")
	g := s.Group("/api").Group("v1")
	require.NoError(t, g.Handle("GET", "/ping", func(ctx ziface.Context) error { return ctx.String(200, "pong") }))

	rr := serve(s, "GET", "/api/v1/ping")
	assert.Equal(t, 200, rr.Code)
	assert.Equal(t, "pong", rr.Body.String())
}

func TestServer_NotFoundOnCompletion(t *testing.T) {
	s := New(":0")
	require.NoError(t, s.Route("GET", "/known", func(ctx ziface.Context) error { return ctx.String(200, "ok") }))

	rr := serve(s, "GET", "/unknown")
	assert.Equal(t, 404, rr.Code)
}

func TestServer_FirstMatchingRouteOwnsRequest(t *testing.T) {
	s := New(":0")
	require.NoError(t, s.Route("GET", "/users/me", func(ctx ziface.Context) error { return ctx.String(200, "me") }))
	require.NoError(t, s.Route("GET", "/users/:id", func(ctx ziface.Context) error { return ctx.String(200, ctx.Param("id")) }))

	assert.Equal(t, "me", serve(s, "GET", "/users/me").Body.String())
	assert.Equal(t, "42", serve(s, "GET", "/users/42").Body.String())
}

func TestServer_GlobalHandlersRunInOrder(t *testing.T) {
	s := New(":0")
	var order []string
	require.NoError(t, s.Use(
		func(args ziface.Args, next ziface.Next) error { order = append(order, "a"); return next() },
		func(args ziface.Args, next ziface.Next) error { order = append(order, "b"); return next() },
	))
	require.NoError(t, s.Route("GET", "/", func(ctx ziface.Context) error {
		order = append(order, "route")
		return ctx.String(200, "ok")
	}))

	serve(s, "GET", "/")
	assert.Equal(t, []string{"a", "b", "route"}, order)
}

func TestServer_HandlerHaltsChain(t *testing.T) {
	s := New(":0")
	require.NoError(t, s.Use(func(args ziface.Args, next ziface.Next) error {
		ctx := args[0].(ziface.Context)
		if ctx.Header("Authorization") == "" {
			return ctx.String(401, "unauthorized")
		}
		return next()
	}))
	routed := false
	require.NoError(t, s.Route("GET", "/", func(ctx ziface.Context) error {
		routed = true
		return ctx.String(200, "ok")
	}))

	rr := serve(s, "GET", "/")
	assert.Equal(t, 401, rr.Code)
	assert.False(t, routed)
}

func TestServer_ErrorBecomes500(t *testing.T) {
	s := New(":0")
	require.NoError(t, s.Route("GET", "/fail", func(ctx ziface.Context) error { return errors.New("db down") }))
	require.NoError(t, s.Route("GET", "/panic", func(ctx ziface.Context) error { panic("boom") }))

	rr := serve(s, "GET", "/fail")
	assert.Equal(t, 500, rr.Code)
	assert.Contains(t, rr.Body.String(), "db down")

	rr = serve(s, "GET", "/panic")
	assert.Equal(t, 500, rr.Code)
	assert.Contains(t, rr.Body.String(), "boom")
}

func TestServer_CustomErrorHandler(t *testing.T) {
	s := New(":0")
	require.NoError(t, s.SetErrorHandler(func(args ziface.Args, err error) error {
		return args[0].(ziface.Context).JSON(503, map[string]string{"error": err.Error()})
	}))
	require.NoError(t, s.Route("GET", "/", func(ctx ziface.Context) error { return errors.New("busy") }))

	rr := serve(s, "GET", "/")
	assert.Equal(t, 503, rr.Code)
	assert.JSONEq(t, `{"error":"busy"}`, rr.Body.String())
}

func TestServer_Validation(t *testing.T) {
	s := New(":0")
	assert.True(t, zerr.IsErrorCode(s.Route("GET", "/", nil), zerr.ErrInvalidArgument))
	assert.True(t, zerr.IsErrorCode(s.Use(nil), zerr.ErrInvalidArgument))
	assert.True(t, zerr.IsErrorCode(s.SetErrorHandler(nil), zerr.ErrInvalidArgument))
}

func TestRequestID(t *testing.T) {
	s := New(":0")
	require.NoError(t, s.Use(RequestID()))
	var seen any
	require.NoError(t, s.Route("GET", "/", func(ctx ziface.Context) error {
		seen, _ = ctx.Get(KeyRequestID)
		return ctx.String(200, "ok")
	}))

	rr := serve(s, "GET", "/")
	id := rr.Header().Get(HeaderRequestID)
	assert.Len(t, id, 36)
	assert.Equal(t, id, seen)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderRequestID, "abc")
	rr = httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	assert.Equal(t, "abc", rr.Header().Get(HeaderRequestID))
}

func TestServer_StartStop(t *testing.T) {
	s := New("127.0.0.1:0")
	require.NoError(t, s.Route("GET", "/ping", func(ctx ziface.Context) error { return ctx.String(200, "pong") }))
	require.NoError(t, s.Start())
	defer s.Stop()

	resp, err := http.Get("http://" + s.Addr() + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))
}

func TestServer_ServeStopsOnContext(t *testing.T) {
	s := New("127.0.0.1:0")
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ctx) }()
	cancel()
	assert.NoError(t, <-errc)
}

// --- Context unit tests ---

func TestContext_Renderers(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	ctx := NewContext(rr, req)

	assert.False(t, ctx.Written())
	require.NoError(t, ctx.JSON(201, map[string]any{"a": 1}))
	assert.Equal(t, 201, rr.Code)
	assert.True(t, ctx.Written())

	rr = httptest.NewRecorder()
	ctx = NewContext(rr, req)
	require.NoError(t, ctx.String(202, "hello"))
	assert.Equal(t, 202, rr.Code)

	rr = httptest.NewRecorder()
	ctx = NewContext(rr, req)
	require.NoError(t, ctx.Bytes(203, []byte("data")))
	assert.Equal(t, 203, rr.Code)
}

func TestContext_ReleaseClearsState(t *testing.T) {
	ctx := AcquireContext(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	ctx.Set("k", "v")
	ctx.AttachParams(map[string]string{"id": "1"})
	_ = ctx.String(200, "x")
	ReleaseContext(ctx)

	assert.Empty(t, ctx.storage)
	assert.Empty(t, ctx.params)
	assert.False(t, ctx.written)
}

// --- Baseline benchmarks ---

func BenchmarkServe_Static(b *testing.B) {
	s := New(":0")
	_ = s.Route("GET", "/", func(ctx ziface.Context) error { return ctx.Bytes(200, []byte("ok")) })
	req := httptest.NewRequest("GET", "/", nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.ServeHTTP(httptest.NewRecorder(), req)
	}
}

func BenchmarkServe_Param(b *testing.B) {
	s := New(":0")
	_ = s.Route("GET", "/users/:id", func(ctx ziface.Context) error { return ctx.Bytes(200, []byte(ctx.Param("id"))) })
	req := httptest.NewRequest("GET", "/users/123", nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.ServeHTTP(httptest.NewRecorder(), req)
	}
}
