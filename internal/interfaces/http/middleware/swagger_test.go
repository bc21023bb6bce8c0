package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	_ "github.com/ryznreal/offers/docs"
	"github.com/stretchr/testify/assert"
)

func TestSwaggerProtection(t *testing.T) {
	tests := []struct {
		name       string
		cfg        SwaggerConfig
		remoteAddr string
		want       int
		wantCode   string
	}{
		{"disabled", SwaggerConfig{Enabled: false}, "203.0.113.7:4000", http.StatusNotFound, "ERR_NOT_FOUND"},
		{"open to all", SwaggerConfig{Enabled: true}, "203.0.113.7:4000", http.StatusOK, ""},
		{"exact address allowed", SwaggerConfig{Enabled: true, AllowedIPs: []string{"203.0.113.7"}}, "203.0.113.7:4000", http.StatusOK, ""},
		{"cidr allowed", SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8"}}, "10.20.30.40:4000", http.StatusOK, ""},
		{"ipv6 allowed", SwaggerConfig{Enabled: true, AllowedIPs: []string{"::1"}}, "[::1]:4000", http.StatusOK, ""},
		{"outside list", SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8"}}, "203.0.113.7:4000", http.StatusForbidden, "ERR_FORBIDDEN"},
		{"only garbage entries", SwaggerConfig{Enabled: true, AllowedIPs: []string{"not-an-ip", "10.0.0.0/99"}}, "10.0.0.1:4000", http.StatusForbidden, "ERR_FORBIDDEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET(SwaggerPath, SwaggerProtection(tt.cfg), func(c *gin.Context) {
				c.String(http.StatusOK, "docs")
			})

			req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
			req.RemoteAddr = tt.remoteAddr
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.wantCode != "" {
				assert.Contains(t, w.Body.String(), tt.wantCode)
			}
		})
	}
}

func TestMountSwagger_ServesDocument(t *testing.T) {
	router := gin.New()
	MountSwagger(router, SwaggerConfig{Enabled: true})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Offers API")
	assert.Contains(t, w.Body.String(), "/projects/{id}/structure")
}
