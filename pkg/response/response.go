package response

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zahrastore/storeapi/pkg/errors"
)

// Envelope is the uniform response shape for all API operations.
type Envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorBody  `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ErrorBody carries the error code, message, and optional field details.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WebhookResult is the data payload acknowledged to inbound provider webhooks.
type WebhookResult struct {
	Message        string `json:"message"`
	ProcessingTime string `json:"processingTime"`
}

// OK writes a success envelope with the given data.
func OK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// Error writes an error envelope; status and code come from the error type.
func Error(c *gin.Context, err error) {
	c.JSON(errors.HTTPStatus(err), Envelope{
		Success: false,
		Error: &ErrorBody{
			Code:    errors.Code(err),
			Message: err.Error(),
			Details: errors.Details(err),
		},
		Timestamp: time.Now().UTC(),
	})
}

// WebhookAck writes the always-success acknowledgement required by the
// fulfillment provider: HTTP 200 even when the event could not be applied.
func WebhookAck(c *gin.Context, message string, elapsed time.Duration) {
	c.JSON(200, Envelope{
		Success: true,
		Data: WebhookResult{
			Message:        message,
			ProcessingTime: elapsed.String(),
		},
		Timestamp: time.Now().UTC(),
	})
}
