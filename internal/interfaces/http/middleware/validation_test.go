package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type awbRequest struct {
	AWB string `json:"awb" binding:"omitempty,awb"`
}

func bindAWB(t *testing.T, body string) error {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req awbRequest
	return c.ShouldBindJSON(&req)
}

func TestSetupValidator_AWBTag(t *testing.T) {
	SetupValidator()

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid awb", `{"awb": "729-12345675"}`, false},
		{"empty awb allowed", `{"awb": ""}`, false},
		{"missing dash", `{"awb": "72912345675"}`, true},
		{"short serial", `{"awb": "729-1234567"}`, true},
		{"letters", `{"awb": "ABC-12345678"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := bindAWB(t, tt.body)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetupValidator_UsesJSONFieldNames(t *testing.T) {
	SetupValidator()

	err := bindAWB(t, `{"awb": "bad"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'awb'")
}
