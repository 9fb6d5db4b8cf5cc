// handlers_test.go - Shared fixtures for handler tests
package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/label-designer/backend/internal/driver"
	"github.com/label-designer/backend/internal/loader"
	"github.com/label-designer/backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const zplTemplateJSON = `{
  "name": "shipping",
  "width": 100,
  "height": 150,
  "protocol": "zpl",
  "elements": [
    {"id": "title", "type": "text", "x": 40, "y": 80, "content": "SHIP TO", "font": "0", "width": 30, "height": 30},
    {"id": "frame", "type": "rectangle", "x": 5, "y": 5, "width": 780, "height": 1180, "thickness": 4}
  ]
}`

const tpclTemplateJSON = `{
  "name": "menu card",
  "width": 60,
  "height": 40,
  "protocol": "tpcl",
  "elements": [
    {"id": "dish", "type": "text", "x": 5, "y": 10, "content": "Café", "font": "H", "width": 1, "height": 1}
  ]
}`

type testServer struct {
	echo  *echo.Echo
	store *testutil.MockStorage
}

func newTestServer(t *testing.T, opts RouteOptions) *testServer {
	t.Helper()
	registry := driver.DefaultRegistry(203)
	store := testutil.NewMockStorage()

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	RegisterRoutes(e, NewHandlers(&Dependencies{
		Store:             store,
		Registry:          registry,
		Loader:            loader.New(registry, "windows-1252"),
		LegacyCharset:     "windows-1252",
		AllowedExtensions: []string{".json", ".jsonc", ".yaml", ".yml", ".tpcl", ".zpl"},
		Version:           "test",
	}), opts)
	return &testServer{echo: e, store: store}
}

func (s *testServer) do(method, target string, body io.Reader, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) postJSON(target, body string) *httptest.ResponseRecorder {
	return s.do(http.MethodPost, target, bytes.NewBufferString(body),
		map[string]string{echo.HeaderContentType: echo.MIMEApplicationJSON})
}

func multipartFile(t *testing.T, fileName string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decodeAPIError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var apiErr APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	return apiErr
}
