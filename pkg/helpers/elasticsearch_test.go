package helpers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func esServer(t *testing.T, status int) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestPingES(t *testing.T) {
	es, err := NewESClient([]string{esServer(t, http.StatusOK)}, "", "")
	require.NoError(t, err)
	assert.NoError(t, PingES(context.Background(), es))

	es, err = NewESClient([]string{esServer(t, http.StatusUnauthorized)}, "elastic", "wrong")
	require.NoError(t, err)
	assert.ErrorContains(t, PingES(context.Background(), es), "401")
}
