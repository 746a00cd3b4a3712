package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"postboard/internal/config"
	"postboard/internal/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.EnsureSchema(db))
	return db
}

func TestNewServerWithDeps_RequiresDeps(t *testing.T) {
	_, err := NewServerWithDeps(nil, nil, nil)
	assert.Error(t, err)

	_, err = NewServerWithDeps(&config.Config{}, nil, nil)
	assert.Error(t, err)

	s, err := NewServerWithDeps(&config.Config{}, openTestDB(t), nil)
	require.NoError(t, err)
	assert.False(t, s.notifier.Enabled())
	assert.NoError(t, s.Shutdown(context.Background()))
}

func TestLivenessCheck(t *testing.T) {
	s, err := NewServerWithDeps(&config.Config{}, openTestDB(t), nil)
	require.NoError(t, err)
	defer func() { _ = s.Shutdown(context.Background()) }()

	status, body := doRequest(t, s.NewApp(), http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "up", body["status"])
}

func TestReadinessCheck(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	tests := []struct {
		name           string
		redis          func() *redis.Client
		closeDB        bool
		expectedStatus int
		overall        string
		dbCheck        string
		redisCheck     string
	}{
		{
			name:           "db up, redis not configured",
			redis:          func() *redis.Client { return nil },
			expectedStatus: http.StatusOK,
			overall:        "healthy",
			dbCheck:        "healthy",
			redisCheck:     "unavailable",
		},
		{
			name:           "db and redis up",
			redis:          func() *redis.Client { return redis.NewClient(&redis.Options{Addr: mr.Addr()}) },
			expectedStatus: http.StatusOK,
			overall:        "healthy",
			dbCheck:        "healthy",
			redisCheck:     "healthy",
		},
		{
			name:           "redis down degrades",
			redis:          func() *redis.Client { return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1}) },
			expectedStatus: http.StatusOK,
			overall:        "degraded",
			dbCheck:        "healthy",
			redisCheck:     "unhealthy",
		},
		{
			name:           "db down",
			redis:          func() *redis.Client { return nil },
			closeDB:        true,
			expectedStatus: http.StatusServiceUnavailable,
			overall:        "unhealthy",
			dbCheck:        "unhealthy",
			redisCheck:     "unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openTestDB(t)
			s, err := NewServerWithDeps(&config.Config{}, db, tt.redis())
			require.NoError(t, err)
			defer func() { _ = s.Shutdown(context.Background()) }()

			if tt.closeDB {
				require.NoError(t, database.Close(db))
			}

			status, body := doRequest(t, s.NewApp(), http.MethodGet, "/health/ready", "")
			assert.Equal(t, tt.expectedStatus, status)
			assert.Equal(t, tt.overall, body["status"])
			checks := body["checks"].(map[string]interface{})
			assert.Equal(t, tt.dbCheck, checks["database"])
			assert.Equal(t, tt.redisCheck, checks["redis"])
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, err := NewServerWithDeps(&config.Config{}, openTestDB(t), nil)
	require.NoError(t, err)
	defer func() { _ = s.Shutdown(context.Background()) }()
	app := s.NewApp()

	status, _ := doRequest(t, app, http.MethodGet, "/posts", "")
	require.Equal(t, http.StatusOK, status)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "postboard_database_query_latency_seconds")
	assert.Contains(t, string(raw), "postboard_http_requests_total")
}

func TestEndToEnd_SQLite(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	s, err := NewServerWithDeps(&config.Config{}, openTestDB(t), rdb)
	require.NoError(t, err)
	defer func() { _ = s.Shutdown(context.Background()) }()
	app := s.NewApp()

	status, body := doRequest(t, app, http.MethodPost, "/posts", `{"title":"Hello Go","content":"c","status":"published"}`)
	require.Equal(t, http.StatusOK, status)
	id := body["data"].(map[string]interface{})["post_id"].(float64)
	assert.Equal(t, float64(1), id)

	status, body = doRequest(t, app, http.MethodGet, "/posts?keywords=hello&status=published", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)
	assert.Equal(t, float64(1), body["total_pages"])

	status, _ = doRequest(t, app, http.MethodPatch, "/posts/1", `{"status":"draft"}`)
	require.Equal(t, http.StatusOK, status)

	status, body = doRequest(t, app, http.MethodGet, "/posts/1", "")
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "draft", data["status"])
	assert.Nil(t, data["published_at"])
	assert.Equal(t, "Hello Go", data["title"])

	status, body = doRequest(t, app, http.MethodDelete, "/posts/1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Post 1 has been deleted.", body["message"])

	status, body = doRequest(t, app, http.MethodDelete, "/posts/1", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Post not found.", body["message"])
}

func TestEndToEnd_DraftRoundTrip(t *testing.T) {
	s, err := NewServerWithDeps(&config.Config{}, openTestDB(t), nil)
	require.NoError(t, err)
	defer func() { _ = s.Shutdown(context.Background()) }()
	app := s.NewApp()

	status, body := doRequest(t, app, http.MethodPost, "/posts",
		`{"title":"A","content":"B","status":"draft","category":"news"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Post has been created.", body["message"])
	id := body["data"].(map[string]interface{})["post_id"].(float64)

	target := fmt.Sprintf("/posts/%d", int(id))
	status, body = doRequest(t, app, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "A", data["title"])
	assert.Equal(t, "B", data["content"])
	assert.Equal(t, "draft", data["status"])
	assert.Equal(t, "news", data["category"])
	require.Contains(t, data, "published_at")
	assert.Nil(t, data["published_at"])

	// leaving category out keeps it, an explicit null clears it
	status, _ = doRequest(t, app, http.MethodPatch, target, `{"content":"C"}`)
	require.Equal(t, http.StatusOK, status)
	_, body = doRequest(t, app, http.MethodGet, target, "")
	data = body["data"].(map[string]interface{})
	assert.Equal(t, "C", data["content"])
	assert.Equal(t, "news", data["category"])

	status, _ = doRequest(t, app, http.MethodPatch, target, `{"category":null}`)
	require.Equal(t, http.StatusOK, status)
	_, body = doRequest(t, app, http.MethodGet, target, "")
	data = body["data"].(map[string]interface{})
	require.Contains(t, data, "category")
	assert.Nil(t, data["category"])
	assert.Equal(t, "C", data["content"])
}

func TestEndToEnd_HugePageIsEmptyNotAnError(t *testing.T) {
	s, err := NewServerWithDeps(&config.Config{}, openTestDB(t), nil)
	require.NoError(t, err)
	defer func() { _ = s.Shutdown(context.Background()) }()
	app := s.NewApp()

	status, _ := doRequest(t, app, http.MethodPost, "/posts", `{"title":"only","content":"c","status":"draft"}`)
	require.Equal(t, http.StatusOK, status)

	for _, page := range []string{"3074457345618258603", "3074457345618258604", "9223372036854775807", "99999999999999999999999"} {
		status, body := doRequest(t, app, http.MethodGet, "/posts?page="+page, "")
		require.Equal(t, http.StatusOK, status, "page=%s: %v", page, body)
		assert.Empty(t, body["data"], "page=%s", page)
		assert.Equal(t, float64(1), body["total_pages"], "page=%s", page)
	}
}

func freePort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)
	require.NoError(t, ln.Close())
	return port
}

func TestRun_ShutsDownBeforeReturning(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	port := freePort(t)
	db := openTestDB(t)
	s, err := NewServerWithDeps(&config.Config{Port: port}, db, rdb)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, 5*time.Second) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + port + "/health/live")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	// everything is already closed once Run returns
	assert.Error(t, database.Ping(context.Background(), db))
	assert.ErrorIs(t, rdb.Ping(context.Background()).Err(), redis.ErrClosed)
}

func TestRun_ListenFailureStillClosesResources(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()
	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)

	db := openTestDB(t)
	s, err := NewServerWithDeps(&config.Config{Port: port}, db, nil)
	require.NoError(t, err)

	err = s.Run(context.Background(), 5*time.Second)
	assert.Error(t, err)
	assert.Error(t, database.Ping(context.Background(), db))
}
