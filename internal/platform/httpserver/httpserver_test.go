package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesProjectTimeouts(t *testing.T) {
	handler := http.NewServeMux()
	srv := New(":9180", handler)

	require.NotNil(t, srv)
	assert.Equal(t, ":9180", srv.Addr)
	assert.Equal(t, http.Handler(handler), srv.Handler)
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, 10*time.Second, srv.ReadTimeout)
	assert.Equal(t, 30*time.Second, srv.WriteTimeout)
	assert.Equal(t, 2*time.Minute, srv.IdleTimeout)
}
