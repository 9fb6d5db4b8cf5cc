package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/label-designer/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

const mimeMsgpack = "application/msgpack"

// wantsMsgpack reports whether the client asked for a MessagePack body.
func wantsMsgpack(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), mimeMsgpack) ||
		c.QueryParam("format") == "msgpack"
}

// respond writes v as MessagePack when requested, JSON otherwise.
func respond(c echo.Context, status int, v interface{}) error {
	if !wantsMsgpack(c) {
		return c.JSON(status, v)
	}
	data, err := msgpack.Marshal(v)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(status, mimeMsgpack, data)
}

// attachment sends data as a file download.
func attachment(c echo.Context, fileName, contentType string, data []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return c.Blob(http.StatusOK, contentType, data)
}

// payloadContentType names the media type of a generated payload.
func payloadContentType(encoding string) string {
	return echo.MIMETextPlain + "; charset=" + encoding
}

// decodeTemplate reads a JSON template document from the request body.
func decodeTemplate(c echo.Context) (*models.LabelTemplate, error) {
	var tmpl models.LabelTemplate
	if err := json.NewDecoder(c.Request().Body).Decode(&tmpl); err != nil {
		return nil, NewBadRequestError("invalid template JSON", err)
	}
	return &tmpl, nil
}
