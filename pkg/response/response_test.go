package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zahrastore/storeapi/pkg/errors"
)

func performRequest(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/t", handler)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestOKEnvelope(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		OK(c, http.StatusCreated, gin.H{"id": "42"})
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
	assert.False(t, env.Timestamp.IsZero())
}

func TestErrorEnvelope(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Error(c, &errors.ErrValidation{
			Message: "stock is required",
			Fields:  map[string]string{"stock": "required"},
		})
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, errors.CodeInvalidInput, env.Error.Code)
	assert.Equal(t, "stock is required", env.Error.Message)
	assert.Equal(t, "required", env.Error.Details["stock"])
}

func TestWebhookAckAlways200(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		WebhookAck(c, "product not matched", 42*time.Millisecond)
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)

	data, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var result WebhookResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, "product not matched", result.Message)
	assert.Equal(t, "42ms", result.ProcessingTime)
}
