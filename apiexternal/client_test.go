package apiexternal

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Kellerman81/go_portfolio_admin/apperrors"
	"github.com/Kellerman81/go_portfolio_admin/crud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, mod ...func(*ClientConfig)) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := ClientConfig{Name: "test", BaseURL: srv.URL, Timeout: 5 * time.Second}
	for _, m := range mod {
		m(&cfg)
	}
	return NewClient(cfg)
}

func TestFetchPage_Envelope(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/api/skills", r.URL.Path)
		w.Write([]byte(`{"items":[{"id":1,"name":"Java","level":80}],"total":1}`))
	})

	params := crud.Params{}.Add("page", "1").Add("pageSize", "10")
	listing, err := c.FetchPage(context.Background(), "/api/skills", params)
	require.NoError(t, err)
	assert.Equal(t, "page=1&pageSize=10", gotQuery)
	assert.Equal(t, 1, listing.Total)
	require.Len(t, listing.Items, 1)
	assert.Equal(t, "1", listing.Items[0].ID())
	assert.Equal(t, "Java", listing.Items[0].Str("name"))
}

func TestFetchPage_NotFoundIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Not found"}`, http.StatusNotFound)
	})

	listing, err := c.FetchPage(context.Background(), "/api/skills", nil)
	require.NoError(t, err)
	assert.Empty(t, listing.Items)
	assert.NotNil(t, listing.Items)
	assert.Equal(t, 0, listing.Total)
}

func TestFetchPage_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"database down"}`))
	})

	_, err := c.FetchPage(context.Background(), "/api/skills", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrClassBackend, apperrors.GetClass(err))
	assert.Equal(t, "Failed to load data: database down", crud.LoadErrorMessage(err))
}

func TestFetchPage_ServerErrorWithoutDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<html>Traceback (most recent call last)</html>`))
	})

	_, err := c.FetchPage(context.Background(), "/api/skills", nil)
	require.Error(t, err)
	assert.Equal(t, "Failed to load data: HTTP 500 Internal Server Error", crud.LoadErrorMessage(err))
	assert.NotContains(t, crud.LoadErrorMessage(err), "Traceback")
}

func TestFetchPage_MissingFieldsDefault(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"id":4},null]}`))
	})

	listing, err := c.FetchPage(context.Background(), "/api/roles", nil)
	require.NoError(t, err)
	require.Len(t, listing.Items, 1)
	assert.Equal(t, 1, listing.Total)
	assert.Equal(t, "", listing.Items[0].Str("name"))
}

func TestFetchAll_BareArrayAndEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		if r.URL.Path == "/api/languages" {
			w.Write([]byte(`[{"id":1,"name":"English","code":"en"},{"id":2,"name":"German","code":"de"}]`))
			return
		}
		w.Write([]byte(`{"items":[{"id":7,"name":"ADMIN"}],"total":1}`))
	})

	langs, err := c.FetchAll(context.Background(), "/api/languages")
	require.NoError(t, err)
	assert.Len(t, langs, 2)

	perms, err := c.FetchAll(context.Background(), "/api/permissions")
	require.NoError(t, err)
	require.Len(t, perms, 1)
	assert.Equal(t, "7", perms[0].ID())
}

func TestMutations_VerbsAndBodies(t *testing.T) {
	type call struct {
		method, path, body, ctype string
	}
	var calls []call
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		calls = append(calls, call{r.Method, r.URL.Path, string(b), r.Header.Get("Content-Type")})
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Write([]byte(`{"id":3}`))
	})
	ctx := context.Background()

	require.NoError(t, c.Create(ctx, "/api/permissions", map[string]any{"name": "READ"}))
	require.NoError(t, c.Update(ctx, "/api/permissions", "3", map[string]any{"id": 3, "name": "WRITE"}))
	require.NoError(t, c.Delete(ctx, "/api/permissions", "3"))

	require.Len(t, calls, 3)
	assert.Equal(t, call{"POST", "/api/permissions", `{"name":"READ"}`, "application/json"}, calls[0])
	assert.Equal(t, "PUT", calls[1].method)
	assert.Equal(t, "/api/permissions/3", calls[1].path)
	assert.JSONEq(t, `{"id":3,"name":"WRITE"}`, calls[1].body)
	assert.Equal(t, call{"DELETE", "/api/permissions/3", "", ""}, calls[2])
}

func TestDelete_DetailSurfaced(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"in use"}`))
	})

	err := c.Delete(context.Background(), "/api/permissions", "9")
	require.Error(t, err)
	assert.Equal(t, "in use", crud.MutationErrorMessage(err, crud.ModeDelete, "Permission"))
}

func TestParseDetail(t *testing.T) {
	assert.Equal(t, "in use", parseDetail([]byte(`{"detail":"in use"}`)))
	assert.Equal(t, "field required; too short", parseDetail([]byte(`{"detail":[{"msg":"field required"},{"msg":"too short"}]}`)))
	assert.Equal(t, "boom", parseDetail([]byte(`{"error":"boom"}`)))
	assert.Equal(t, "", parseDetail([]byte(`<html>`)))
}

func TestCookiesForwarded(t *testing.T) {
	var got []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		for _, ck := range r.Cookies() {
			got = append(got, ck.Name+"="+ck.Value)
		}
		w.Write([]byte(`[]`))
	}, func(cfg *ClientConfig) { cfg.ForwardCookies = []string{"access_token"} })

	ctx := WithCookies(context.Background(), []*http.Cookie{
		{Name: "access_token", Value: "abc"},
		{Name: "admin_session", Value: "local"},
	})
	_, err := c.FetchAll(ctx, "/api/roles")
	require.NoError(t, err)
	assert.Equal(t, []string{"access_token=abc"}, got)
}

func TestCircuitBreaker_OpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, func(cfg *ClientConfig) {
		cfg.CircuitBreakerThreshold = 2
		cfg.CircuitBreakerTimeout = time.Minute
	})

	for range 4 {
		_, err := c.FetchPage(context.Background(), "/api/skills", nil)
		require.Error(t, err)
	}
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, "open", c.GetStats().BreakerState)
	assert.Equal(t, apperrors.ErrClassNetwork, apperrors.GetClass(func() error {
		_, err := c.FetchPage(context.Background(), "/api/skills", nil)
		return err
	}()))
}

func TestCircuitBreaker_IgnoresClientErrors(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}, func(cfg *ClientConfig) {
		cfg.CircuitBreakerThreshold = 1
		cfg.CircuitBreakerTimeout = time.Minute
	})

	for range 3 {
		require.Error(t, c.Create(context.Background(), "/api/skills", map[string]any{}))
	}
	assert.Equal(t, int32(3), hits.Load())
	stats := c.GetStats()
	assert.Equal(t, int64(3), stats.RequestsTotal)
	assert.Equal(t, int64(3), stats.SuccessCount)
}
