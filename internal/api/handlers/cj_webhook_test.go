package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/repository"
	"github.com/zahrastore/storeapi/internal/service"
	"github.com/zahrastore/storeapi/pkg/response"
)

func newWebhookRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// The test-sentinel and malformed-payload paths never touch the store.
	svc := service.NewWebhookService(&repository.Repositories{}, 1.3, zap.NewNop())

	router := gin.New()
	router.POST("/webhooks/cj/product", HandleCJProductWebhook(svc, zap.NewNop()))
	router.POST("/webhooks/cj/stock", HandleCJStockWebhook(svc, zap.NewNop()))
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func decodeAck(t *testing.T, w *httptest.ResponseRecorder) response.WebhookResult {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.True(t, env.Success)

	data, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var result response.WebhookResult
	require.NoError(t, json.Unmarshal(data, &result))
	return result
}

func TestProductWebhookTestPayloadAcked(t *testing.T) {
	router := newWebhookRouter(t)

	w := postJSON(router, "/webhooks/cj/product", `{"productId":"test"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	result := decodeAck(t, w)
	assert.Equal(t, "test payload acknowledged", result.Message)
	assert.NotEmpty(t, result.ProcessingTime)
}

func TestStockWebhookTestPayloadAcked(t *testing.T) {
	router := newWebhookRouter(t)

	w := postJSON(router, "/webhooks/cj/stock", `{"sku":"test"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "test payload acknowledged", decodeAck(t, w).Message)
}

func TestWebhookMalformedBodyStillAcked(t *testing.T) {
	router := newWebhookRouter(t)

	for _, path := range []string{"/webhooks/cj/product", "/webhooks/cj/stock"} {
		w := postJSON(router, path, `{"productId": not-json`)
		assert.Equal(t, http.StatusOK, w.Code, path)

		result := decodeAck(t, w)
		assert.Contains(t, result.Message, "invalid payload", path)
	}
}

func TestWebhookWrongTypeStillAcked(t *testing.T) {
	router := newWebhookRouter(t)

	// stock as a string is a binding error, not a 4xx.
	w := postJSON(router, "/webhooks/cj/stock", `{"productId":"p1","stock":"many"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decodeAck(t, w).Message, "invalid payload")
}
