package handlers

import (
	vss "github.com/xpanvictor/xarvis-voice/internal/domains/sys_manager/voice_stream_system"
)

// Response wrapper types for Swagger documentation

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"Something went wrong"`
	Details string `json:"details,omitempty" example:"decode"`
}

// CreateSessionRequest optionally pins the session id.
type CreateSessionRequest struct {
	SessionID string `json:"session_id,omitempty" example:"kitchen-speaker"`
}

// SessionResponse represents a session and its status
type SessionResponse struct {
	SessionID string     `json:"session_id" example:"2b1f0c9e-7c5e-4e8e-9a53-2d1c8c1f6a10"`
	Status    vss.Status `json:"status"`
}

// ChunkRequest carries one audio chunk
type ChunkRequest struct {
	AudioBase64 string `json:"audio_base64" binding:"required" example:"GkXfo59ChoEBQveBAULygQRC84EIQoKEd2VibUKHgQRChYECGFOAZwH..."`
	Format      string `json:"format,omitempty" example:"webm"`
}

// ChunkResponse reports what happened to a submitted chunk
type ChunkResponse struct {
	Status      vss.Outcome `json:"status" example:"buffered"`
	BufferBytes int         `json:"buffer_bytes" example:"48000"`
	State       vss.State   `json:"state" example:"LISTENING"`
	Events      []vss.Event `json:"events"`
}

// OutcomeResponse is returned by the turn control endpoints
type OutcomeResponse struct {
	Outcome vss.Outcome `json:"outcome" example:"responded"`
	Status  vss.Status  `json:"status"`
	Events  []vss.Event `json:"events"`
}

// StatusResponse represents session status plus pending events
type StatusResponse struct {
	Status vss.Status  `json:"status"`
	Events []vss.Event `json:"events"`
}

// HealthResponse represents the liveness probe payload
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Sessions int    `json:"sessions" example:"3"`
}
