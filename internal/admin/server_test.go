package admin_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mjfern/rootdns/internal/admin"
	"github.com/mjfern/rootdns/internal/config"
	"github.com/mjfern/rootdns/internal/server"
)

func TestNewCreatesServer(t *testing.T) {
	srv := admin.New(config.AdminConfig{Host: "127.0.0.1", Port: 9999}, nil, server.NewDNSStats(), time.Now())
	assert.NotNil(t, srv)
	assert.Equal(t, "127.0.0.1:9999", srv.Addr())
	assert.NotNil(t, srv.Engine())
}

func TestShutdownWithoutListenDoesNotError(t *testing.T) {
	srv := admin.New(config.AdminConfig{Port: 0}, nil, server.NewDNSStats(), time.Now())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.NoError(t, srv.Shutdown(ctx))
}

func TestSwaggerAndStaticRoutesAreMounted(t *testing.T) {
	srv := admin.New(config.AdminConfig{}, nil, server.NewDNSStats(), time.Now())

	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	w = httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
