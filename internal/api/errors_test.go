// errors_test.go - Tests for API error mapping
package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/label-designer/backend/internal/driver"
	"github.com/label-designer/backend/internal/loader"
	"github.com/label-designer/backend/internal/models"
	"github.com/label-designer/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{fmt.Errorf("%w: abc", storage.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("%w: epl", driver.ErrUnknownDriver), http.StatusNotFound, "UNKNOWN_DRIVER"},
		{fmt.Errorf("%w: size", models.ErrInvalidTemplate), http.StatusUnprocessableEntity, "INVALID_TEMPLATE"},
		{fmt.Errorf("%w: x.pdf", loader.ErrUnsupportedFormat), http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT"},
		{NewValidationError("name"), http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			apiErr := FromError(tt.err)
			require.NotNil(t, apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.Status)
			assert.Equal(t, tt.wantCode, apiErr.Code)
		})
	}
	assert.Nil(t, FromError(errors.New("boom")))
}

func TestErrorHandlerHidesUnexpectedDetails(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	ErrorHandler(errors.New("secret path /etc"), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	apiErr := decodeAPIError(t, rec)
	assert.Equal(t, "UNKNOWN_ERROR", apiErr.Code)
	assert.Empty(t, apiErr.Details)
}

func TestErrorHandlerWrapsEchoErrors(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	ErrorHandler(echo.ErrMethodNotAllowed, c)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "HTTP_ERROR", decodeAPIError(t, rec).Code)
}
