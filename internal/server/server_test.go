package server

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibe-gaming/passwordless/internal/config"
)

func TestNewServer(t *testing.T) {
	srv := NewServer(config.HttpServer{
		Port:        "8081",
		Timeout:     3 * time.Second,
		IdleTimeout: time.Minute,
	}, http.NotFoundHandler())

	assert.Equal(t, ":8081", srv.Addr())
	assert.Equal(t, 3*time.Second, srv.httpServer.ReadHeaderTimeout)
	assert.Equal(t, 3*time.Second, srv.httpServer.WriteTimeout)
	assert.Equal(t, time.Minute, srv.httpServer.IdleTimeout)
	assert.Equal(t, maxHeaderBytes, srv.httpServer.MaxHeaderBytes)
}

func TestServer_StopBeforeRun(t *testing.T) {
	srv := NewServer(config.HttpServer{Port: "0"}, http.NotFoundHandler())

	require.NoError(t, srv.Stop(context.Background()))
	assert.True(t, errors.Is(srv.Run(), http.ErrServerClosed))
}
