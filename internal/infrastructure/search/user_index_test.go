package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/entity"
)

type request struct {
	method string
	path   string
	body   string
}

// fakeES answers like a single Elasticsearch node.
func fakeES(t *testing.T, status int, reply string) (*elasticsearch.Client, func() []request) {
	t.Helper()
	var mu sync.Mutex
	var got []request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, request{method: r.Method, path: r.URL.Path, body: string(b)})
		mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es, func() []request {
		mu.Lock()
		defer mu.Unlock()
		return append([]request(nil), got...)
	}
}

func sampleRecord() entity.Record {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return entity.Record{ID: "u-1", Email: "john@example.com", Name: "John Doe", Role: "USER", CreatedAt: ts, UpdatedAt: ts}
}

func TestUserIndex_Index(t *testing.T) {
	es, requests := fakeES(t, http.StatusCreated, `{"result":"created"}`)
	idx := NewUserIndex(es, "users")

	require.NoError(t, idx.Index(context.Background(), sampleRecord()))

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPut, reqs[0].method)
	assert.Equal(t, "/users/_doc/u-1", reqs[0].path)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(reqs[0].body), &doc))
	assert.Equal(t, "john@example.com", doc["email"])
}

func TestUserIndex_DeleteMissingIsFine(t *testing.T) {
	es, _ := fakeES(t, http.StatusNotFound, `{"result":"not_found"}`)
	assert.NoError(t, NewUserIndex(es, "users").Delete(context.Background(), "u-1"))
}

func TestUserIndex_Search(t *testing.T) {
	reply := `{"hits":{"hits":[{"_id":"u-1","_source":{"id":"u-1","email":"john@example.com","name":"John Doe","role":"USER","created_at":"2024-05-01T10:00:00Z","updated_at":"2024-05-01T10:00:00Z"}}]}}`
	es, requests := fakeES(t, http.StatusOK, reply)

	got, err := NewUserIndex(es, "users").Search(context.Background(), "john", 5)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, sampleRecord(), got[0])
	reqs := requests()
	require.Len(t, reqs, 1)
	assert.True(t, strings.HasSuffix(reqs[0].path, "/users/_search"))
	assert.Contains(t, reqs[0].body, `"multi_match"`)
	assert.Contains(t, reqs[0].body, `"size":5`)
}

func TestUserIndex_SearchWithoutIndex(t *testing.T) {
	es, _ := fakeES(t, http.StatusNotFound, `{"error":{"type":"index_not_found_exception"}}`)

	got, err := NewUserIndex(es, "users").Search(context.Background(), "john", 5)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUserIndex_IndexServerError(t *testing.T) {
	es, _ := fakeES(t, http.StatusInternalServerError, `{}`)
	assert.Error(t, NewUserIndex(es, "users").Index(context.Background(), sampleRecord()))
}
