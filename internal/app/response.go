package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDKey    = "requestId"
	requestIDHeader = "X-Request-ID"
)

// Structs for the API response format

type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	RequestID string    `json:"requestId"`
}

type APIResponse struct {
	Data     interface{} `json:"data"`
	Errors   []string    `json:"errors"`
	Metadata Metadata    `json:"metadata"`
}

// CreateAPIResponse builds the envelope. A blank requestID gets a fresh UUID.
func CreateAPIResponse(data interface{}, errors []string, requestID string) APIResponse {
	if requestID == "" {
		requestID = uuid.New().String()
	}
	if errors == nil {
		errors = []string{}
	}
	return APIResponse{
		Data:   data,
		Errors: errors,
		Metadata: Metadata{
			Timestamp: time.Now(),
			Version:   APIVersion,
			RequestID: requestID,
		},
	}
}

// RequestID propagates or assigns an X-Request-ID for every request.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(200, CreateAPIResponse(data, nil, c.GetString(requestIDKey)))
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, CreateAPIResponse(nil, []string{message}, c.GetString(requestIDKey)))
}
