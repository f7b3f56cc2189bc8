package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", RequireToken("s3cret"), func(c *gin.Context) {
		user, err := GetUser(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, user)
	})
	return router
}

func TestRequireToken(t *testing.T) {
	tests := []struct {
		name         string
		headers      map[string]string
		expectedCode int
		expectedErr  string
	}{
		{name: "X-Token header", headers: map[string]string{"X-Token": "s3cret"}, expectedCode: http.StatusOK},
		{name: "bearer token", headers: map[string]string{"Authorization": "Bearer s3cret"}, expectedCode: http.StatusOK},
		{name: "lowercase bearer", headers: map[string]string{"Authorization": "bearer s3cret"}, expectedCode: http.StatusOK},
		{name: "missing token", headers: nil, expectedCode: http.StatusUnauthorized, expectedErr: "UNAUTHORIZED"},
		{name: "non-bearer authorization", headers: map[string]string{"Authorization": "Basic abc"}, expectedCode: http.StatusUnauthorized, expectedErr: "UNAUTHORIZED"},
		{name: "wrong token", headers: map[string]string{"X-Token": "nope"}, expectedCode: http.StatusForbidden, expectedErr: "FORBIDDEN"},
		{name: "prefix of token", headers: map[string]string{"X-Token": "s3c"}, expectedCode: http.StatusForbidden, expectedErr: "FORBIDDEN"},
	}

	router := setupAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.expectedErr != "" {
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tt.expectedErr, body["code"])
				return
			}
			assert.Equal(t, float64(1), body["id"])
			assert.Equal(t, "admin", body["username"])
		})
	}
}

func TestGetUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		setupFunc func(*gin.Context)
		wantErr   bool
	}{
		{name: "user present", setupFunc: func(c *gin.Context) { c.Set(userContextKey, adminUser) }},
		{name: "user missing", setupFunc: func(c *gin.Context) {}, wantErr: true},
		{name: "wrong type", setupFunc: func(c *gin.Context) { c.Set(userContextKey, "admin") }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			tt.setupFunc(c)

			user, err := GetUser(c)
			if tt.wantErr {
				var authErr *AuthError
				assert.ErrorAs(t, err, &authErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint(1), user.ID)
		})
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery())
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
}

func TestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Metrics())
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/7", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
