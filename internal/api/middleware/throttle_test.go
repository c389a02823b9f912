package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newThrottledRouter(t *testing.T, client redis.Cmdable, requests int, window time.Duration) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(NewThrottle(client, requests, window).Handler())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func doGet(r http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestThrottle_BlocksAfterLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := newThrottledRouter(t, client, 3, time.Minute)

	for i := 0; i < 3; i++ {
		w := doGet(r, "10.0.0.1:1234")
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doGet(r, "10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	// 其他 IP 不受影响
	w = doGet(r, "10.0.0.2:1234")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestThrottle_WindowResets(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := newThrottledRouter(t, client, 1, 10*time.Second)

	assert.Equal(t, http.StatusOK, doGet(r, "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(r, "10.0.0.1:1").Code)

	mr.FastForward(11 * time.Second)
	assert.Equal(t, http.StatusOK, doGet(r, "10.0.0.1:1").Code)
}

func TestThrottle_FailsOpenWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	r := newThrottledRouter(t, client, 1, time.Minute)
	mr.Close()

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doGet(r, "10.0.0.1:1").Code)
	}
}

func TestThrottle_DisabledWithoutClient(t *testing.T) {
	r := newThrottledRouter(t, nil, 1, time.Minute)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doGet(r, "10.0.0.1:1").Code)
	}
}
