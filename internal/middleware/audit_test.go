package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMaskSensitiveFields(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"change password", `{"oldPassword":"secret1","newPassword": "secret2"}`, `{"oldPassword":"***","newPassword": "***"}`},
		{"no secrets", `{"mapName":"Trip"}`, `{"mapName":"Trip"}`},
		{"non-string value", `{"password":123}`, `{"password":123}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maskSensitiveFields(tt.in); got != tt.want {
				t.Errorf("maskSensitiveFields() = %s, expected %s", got, tt.want)
			}
		})
	}
}

func TestFormatAuditMessage(t *testing.T) {
	if got := formatAuditMessage("alice", "DELETE", "/api/users/me", 200); got != "[Audit] alice DELETE /api/users/me -> OK" {
		t.Errorf("got %q", got)
	}
	if got := formatAuditMessage("alice", "PUT", "/api/users/me/password", 400); !strings.HasSuffix(got, "Failed") {
		t.Errorf("got %q", got)
	}
}

func TestAuditLog_KeepsBodyForHandler(t *testing.T) {
	router := gin.New()
	router.Use(AuditLog(nil))
	var seen string
	router.PUT("/api/users/me/password", func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		seen = string(b)
		c.Status(http.StatusOK)
	})

	body := `{"oldPassword":"a","newPassword":"b"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/users/me/password", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if seen != body {
		t.Errorf("handler saw %q, expected the unchanged body", seen)
	}
}

func TestAuditAction(t *testing.T) {
	tests := map[string]string{"POST": "create", "PUT": "update", "DELETE": "delete", "PATCH": "patch"}
	for method, want := range tests {
		if got := auditAction(method); got != want {
			t.Errorf("auditAction(%s) = %q, expected %q", method, got, want)
		}
	}
}
