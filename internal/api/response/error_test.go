package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/tnammu/dividash/internal/domain/stock"
)

func TestFromDomain(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid symbol", stock.ErrInvalidSymbol, http.StatusBadRequest, ErrCodeInvalidParameter},
		{"unknown stock", stock.ErrStockNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"duplicate stock", stock.ErrStockExists, http.StatusConflict, ErrCodeConflict},
		{"rate limited", stock.ErrRateLimited, http.StatusTooManyRequests, ErrCodeRateLimitExceeded},
		{"wrapped provider failure", fmt.Errorf("yahoo: status=500 body=: %w", stock.ErrProviderFailure), http.StatusBadGateway, ErrCodeExternalAPIError},
		{"unexpected error", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalServer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			FromDomain(c, tc.err)

			require.Equal(t, tc.status, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, tc.code, body.Error.Code)
		})
	}
}
