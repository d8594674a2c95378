package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// Envelope codes returned by /api/v2.
const (
	CodeOK             = "OK"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeConflict       = "CONFLICT"
	CodeResourceBusy   = "RESOURCE_BUSY"
	CodeBadGateway     = "BAD_GATEWAY"
	CodeInternal       = "INTERNAL_ERROR"
)

// ResponseV2 wraps every /api/v2 payload. Errors carry {"detail": ...} in Data.
type ResponseV2 struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	RequestID string `json:"request_id"`
}

// requestID echoes the caller's X-Request-ID or mints one.
func requestID(c *gin.Context) string {
	id := c.GetHeader(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(requestIDHeader, id)
	return id
}

func respondV2(c *gin.Context, status int, code, message string, data any) {
	c.JSON(status, ResponseV2{Code: code, Message: message, Data: data, RequestID: requestID(c)})
}

func okV2(c *gin.Context, data any) {
	respondV2(c, http.StatusOK, CodeOK, "OK", data)
}

func errV2(c *gin.Context, status int, code, message, detail string) {
	respondV2(c, status, code, message, gin.H{"detail": detail})
}

func serviceErrV2(c *gin.Context, message string, err error) {
	status, code := classifyError(err)
	errV2(c, status, code, message, err.Error())
}
