package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type startCycleTestRequest struct {
	Mode string `json:"mode" binding:"required,oneof=normal aggressive light minimal"`
}

func newJSONTestContext(body string) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/start_trading_cycle", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, rec
}

func TestBindJSONAcceptsValidBody(t *testing.T) {
	c, rec := newJSONTestContext(`{"mode":"normal"}`)

	var req startCycleTestRequest
	ok := BindJSON(c, &req)

	assert.True(t, ok)
	assert.Equal(t, "normal", req.Mode)
	assert.False(t, c.IsAborted())
	assert.Equal(t, http.StatusOK, rec.Code, "BindJSON must not write a response on success")
}

func TestBindJSONRejectsMalformedJSON(t *testing.T) {
	c, rec := newJSONTestContext(`{"mode":`)

	var req startCycleTestRequest
	ok := BindJSON(c, &req)

	assert.False(t, ok)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBindJSONRejectsValueFailingValidatorTag(t *testing.T) {
	c, rec := newJSONTestContext(`{"mode":"not-a-real-mode"}`)

	var req startCycleTestRequest
	ok := BindJSON(c, &req)

	assert.False(t, ok)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBindJSONRejectsMissingRequiredField(t *testing.T) {
	c, rec := newJSONTestContext(`{}`)

	var req startCycleTestRequest
	ok := BindJSON(c, &req)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
