package models

import (
	"time"

	"github.com/google/uuid"
)

// RequestLog records one authenticated call to the fake API.
type RequestLog struct {
	ID        int64     `json:"id"`
	APIKeyID  uuid.UUID `json:"api_key_id"`
	Endpoint  string    `json:"endpoint"`
	Method    string    `json:"method"`
	ClientIP  *string   `json:"client_ip,omitempty"`
	UserAgent *string   `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EndpointCount is a per-endpoint aggregate of request logs for one key.
type EndpointCount struct {
	Endpoint string `json:"endpoint"`
	Method   string `json:"method"`
	Count    int64  `json:"count"`
}
