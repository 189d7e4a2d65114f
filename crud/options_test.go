package crud

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/alitto/pond/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	calls atomic.Int32
	data  map[string][]Row
}

func (l *fakeLister) FetchAll(_ context.Context, endpoint string) ([]Row, error) {
	l.calls.Add(1)
	rows, ok := l.data[endpoint]
	if !ok {
		return nil, errors.New("boom")
	}
	return rows, nil
}

func TestLoadOptions(t *testing.T) {
	pool := pond.NewPool(2)
	defer pool.StopAndWait()

	l := &fakeLister{data: map[string][]Row{
		"/api/languages": {{"id": float64(1), "name": "English", "code": "en"}},
		"/api/sections":  {{"id": float64(4), "title": "About"}},
	}}
	sources := map[string]*OptionsSource{
		"language_id": {Endpoint: "/api/languages", Label: func(r Row) string { return r.Str("name") + " (" + r.Str("code") + ")" }},
		"section_id":  {Endpoint: "/api/sections", Label: func(r Row) string { return r.Str("title") }},
	}

	opts, err := LoadOptions(context.Background(), pool, l, sources)
	require.NoError(t, err)
	assert.Equal(t, []Option{{Value: "1", Label: "English (en)"}}, opts["language_id"])
	assert.Equal(t, []Option{{Value: "4", Label: "About"}}, opts["section_id"])
	assert.Equal(t, int32(2), l.calls.Load())
}

func TestLoadOptions_PartialFailure(t *testing.T) {
	pool := pond.NewPool(2)
	defer pool.StopAndWait()

	l := &fakeLister{data: map[string][]Row{"/api/roles": {{"id": 1, "name": "Admin"}}}}
	opts, err := LoadOptions(context.Background(), pool, l, map[string]*OptionsSource{
		"roles":       {Endpoint: "/api/roles"},
		"permissions": {Endpoint: "/api/permissions"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "/api/permissions")
	assert.Equal(t, []Option{{Value: "1", Label: "Admin"}}, opts["roles"])
	_, ok := opts["permissions"]
	assert.False(t, ok)
}
