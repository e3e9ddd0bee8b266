package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	vss "github.com/xpanvictor/xarvis-voice/internal/domains/sys_manager/voice_stream_system"
)

// drainEvents returns the events queued for a request/response session.
func drainEvents(s *vss.ConversationSession) []vss.Event {
	if mb, ok := s.Emitter().(*vss.Mailbox); ok {
		return mb.Drain()
	}
	return []vss.Event{}
}

// writeSessionError maps registry and turn errors to HTTP responses.
func writeSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, vss.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
	case errors.Is(err, vss.ErrSessionExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "session already exists"})
	case errors.Is(err, vss.ErrSessionClosed):
		c.JSON(http.StatusGone, ErrorResponse{Error: "session closed"})
	case vss.KindOf(err) == vss.KindDecode:
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: vss.PublicMessage(err), Details: string(vss.KindDecode)})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}
