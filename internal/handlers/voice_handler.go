package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	vss "github.com/xpanvictor/xarvis-voice/internal/domains/sys_manager/voice_stream_system"
	"github.com/xpanvictor/xarvis-voice/pkg/Logger"
)

// VoiceHandler is the request/response surface of the voice engine, for
// callers that cannot hold a websocket open.
type VoiceHandler struct {
	vss         *vss.VSS
	logger      *Logger.Logger
	mailboxSize int
	waitLimit   time.Duration
}

func NewVoiceHandler(v *vss.VSS, logger *Logger.Logger) *VoiceHandler {
	cfg := v.Config()
	// a process call never waits longer than the three stage timeouts combined
	wait := cfg.Timeouts.Transcribe + cfg.Timeouts.Respond + cfg.Timeouts.Synthesize
	if wait <= 0 {
		wait = 90 * time.Second
	}
	return &VoiceHandler{
		vss:         v,
		logger:      logger,
		mailboxSize: cfg.MailboxSize,
		waitLimit:   wait,
	}
}

func (h *VoiceHandler) mailbox() vss.Emitter {
	return vss.NewMailbox(h.mailboxSize)
}

func (h *VoiceHandler) session(c *gin.Context) (*vss.ConversationSession, bool) {
	s, err := h.vss.Get(c.Param("id"))
	if err != nil {
		writeSessionError(c, err)
		return nil, false
	}
	return s, true
}

// CreateSession opens a request/response voice session
// @Summary Create a voice session
// @Description Opens a request/response voice session. The id is generated unless given.
// @Tags Voice
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateSessionRequest false "Optional session id"
// @Success 201 {object} SessionResponse "Created session"
// @Failure 409 {object} ErrorResponse "Session already exists"
// @Router /voice/sessions [post]
func (h *VoiceHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid request data",
				Details: err.Error(),
			})
			return
		}
	}

	s, err := h.vss.Open(req.SessionID, vss.RequestSession, h.mailbox())
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SessionResponse{SessionID: s.ID(), Status: s.Status()})
}

// SubmitChunk buffers one audio chunk
// @Summary Submit an audio chunk
// @Description Appends a base64 audio chunk to the session buffer, creating the session on first contact.
// @Tags Voice
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body ChunkRequest true "Audio chunk"
// @Success 200 {object} ChunkResponse "Chunk outcome"
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Failure 422 {object} ErrorResponse "Undecodable audio"
// @Router /voice/sessions/{id}/chunks [post]
func (h *VoiceHandler) SubmitChunk(c *gin.Context) {
	var req ChunkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	s, _, err := h.vss.GetOrOpen(c.Param("id"), vss.RequestSession, h.mailbox)
	if err != nil {
		writeSessionError(c, err)
		return
	}

	outcome, err := s.ReceiveAudio(req.AudioBase64, req.Format)
	if outcome == vss.OutcomeRejected || outcome == vss.OutcomeClosed {
		// the error is the response; do not report it again on the next call
		drainEvents(s)
		writeSessionError(c, err)
		return
	}

	st := s.Status()
	c.JSON(http.StatusOK, ChunkResponse{
		Status:      outcome,
		BufferBytes: st.BufferBytes,
		State:       st.State,
		Events:      drainEvents(s),
	})
}

// ProcessTurn ends the current turn and waits for its result
// @Summary Process buffered audio
// @Description Ends the turn and waits for transcription, reply and synthesis to finish.
// @Tags Voice
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} OutcomeResponse "Turn outcome and events"
// @Success 202 {object} OutcomeResponse "Turn still processing"
// @Failure 404 {object} ErrorResponse "Session not found"
// @Router /voice/sessions/{id}/process [post]
func (h *VoiceHandler) ProcessTurn(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.waitLimit)
	defer cancel()

	outcome, err := s.EndTurnAndWait(ctx)
	if outcome == vss.OutcomeClosed {
		writeSessionError(c, err)
		return
	}

	code := http.StatusOK
	if err != nil {
		h.logger.Debugf("session %s: stopped waiting for turn: %v", s.ID(), err)
		code = http.StatusAccepted
	}
	c.JSON(code, OutcomeResponse{Outcome: outcome, Status: s.Status(), Events: drainEvents(s)})
}

// Interrupt forces barge-in
// @Summary Interrupt the assistant
// @Tags Voice
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} OutcomeResponse "Interrupt outcome"
// @Failure 404 {object} ErrorResponse "Session not found"
// @Router /voice/sessions/{id}/interrupt [post]
func (h *VoiceHandler) Interrupt(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	outcome := s.Interrupt()
	c.JSON(http.StatusOK, OutcomeResponse{Outcome: outcome, Status: s.Status(), Events: drainEvents(s)})
}

// BotSpeechComplete acknowledges playback of the last reply
// @Summary Confirm reply playback finished
// @Tags Voice
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} OutcomeResponse "Outcome"
// @Failure 404 {object} ErrorResponse "Session not found"
// @Router /voice/sessions/{id}/bot-speech-complete [post]
func (h *VoiceHandler) BotSpeechComplete(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	outcome := s.BotSpeechComplete()
	c.JSON(http.StatusOK, OutcomeResponse{Outcome: outcome, Status: s.Status(), Events: drainEvents(s)})
}

// GetStatus returns the session status and pending events
// @Summary Get session status
// @Tags Voice
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} StatusResponse "Status and pending events"
// @Failure 404 {object} ErrorResponse "Session not found"
// @Router /voice/sessions/{id}/status [get]
func (h *VoiceHandler) GetStatus(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: s.Status(), Events: drainEvents(s)})
}

// EndSession closes a session
// @Summary End a voice session
// @Tags Voice
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 204 "Session ended"
// @Failure 409 {object} ErrorResponse "Session belongs to a websocket connection"
// @Router /voice/sessions/{id} [delete]
func (h *VoiceHandler) EndSession(c *gin.Context) {
	id := c.Param("id")
	if s, err := h.vss.Get(id); err == nil && s.Kind() == vss.StreamSession {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "session is bound to a websocket connection"})
		return
	}
	h.vss.End(id)
	c.Status(http.StatusNoContent)
}

// Stats reports registry activity
// @Summary Voice engine statistics
// @Tags Voice
// @Produce json
// @Success 200 {object} voicestreamsystem.Stats "Registry statistics"
// @Router /voice/stats [get]
func (h *VoiceHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.vss.GetStats())
}

// Health is the liveness probe
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse "Service healthy"
// @Router /health [get]
func (h *VoiceHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Sessions: h.vss.Len()})
}

// RegisterRoutes mounts the request/response surface. protected wraps the
// session routes with auth.
func (h *VoiceHandler) RegisterRoutes(r gin.IRouter, protected ...gin.HandlerFunc) {
	r.GET("/voice/stats", h.Stats)

	sessions := r.Group("/voice/sessions", protected...)
	{
		sessions.POST("", h.CreateSession)
		sessions.POST("/:id/chunks", h.SubmitChunk)
		sessions.POST("/:id/process", h.ProcessTurn)
		sessions.POST("/:id/interrupt", h.Interrupt)
		sessions.POST("/:id/bot-speech-complete", h.BotSpeechComplete)
		sessions.GET("/:id/status", h.GetStatus)
		sessions.DELETE("/:id", h.EndSession)
	}
}
