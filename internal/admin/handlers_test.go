package admin_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjfern/rootdns/internal/admin"
	"github.com/mjfern/rootdns/internal/config"
	"github.com/mjfern/rootdns/internal/server"
)

func TestHealthzReturnsOK(t *testing.T) {
	srv := admin.New(config.AdminConfig{}, nil, server.NewDNSStats(), time.Now())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp admin.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestStatsReflectsDNSStatsSnapshot(t *testing.T) {
	stats := server.NewDNSStats()
	stats.RecordQuery()
	stats.RecordQuery()
	stats.RecordNXDOMAIN()
	stats.RecordLatency(int64(5 * time.Millisecond))

	srv := admin.New(config.AdminConfig{}, nil, stats, time.Now().Add(-90*time.Second))

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp admin.StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.GreaterOrEqual(t, resp.UptimeSeconds, int64(90))
	assert.Equal(t, uint64(2), resp.DNS.QueriesTotal)
	assert.Equal(t, uint64(1), resp.DNS.ResponsesNX)
}

func TestStatsWithNilStatsCollectorDoesNotPanic(t *testing.T) {
	srv := admin.New(config.AdminConfig{}, nil, nil, time.Now())

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
