package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(origins []string, method, origin string, preflight bool) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(origins))
	r.Any("/rooms", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(method, "/rooms", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSAllowList(t *testing.T) {
	origins := []string{"https://admin.hostel.test/", "https://*.campus.test"}

	w := serve(origins, http.MethodGet, "https://admin.hostel.test", false)
	assert.Equal(t, "https://admin.hostel.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = serve(origins, http.MethodGet, "https://east.campus.test", false)
	assert.Equal(t, "https://east.campus.test", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(origins, http.MethodGet, "https://evil.test", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(origins, http.MethodGet, "https://campus.test", false)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	w := serve([]string{"https://admin.hostel.test"}, http.MethodOptions, "https://admin.hostel.test", true)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")

	w = serve([]string{"https://admin.hostel.test"}, http.MethodOptions, "https://evil.test", true)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORSOpenWithoutCredentials(t *testing.T) {
	w := serve(nil, http.MethodGet, "https://anywhere.test", false)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}
