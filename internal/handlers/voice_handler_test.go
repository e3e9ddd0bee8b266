package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vss "github.com/xpanvictor/xarvis-voice/internal/domains/sys_manager/voice_stream_system"
	"github.com/xpanvictor/xarvis-voice/internal/domains/user"
	"github.com/xpanvictor/xarvis-voice/pkg/Logger"
	"github.com/xpanvictor/xarvis-voice/pkg/assistant"
	"github.com/xpanvictor/xarvis-voice/pkg/io/stt"
	"github.com/xpanvictor/xarvis-voice/pkg/io/stt/vad"
	"github.com/xpanvictor/xarvis-voice/pkg/io/tts"
)

type echoResponder struct{}

func (echoResponder) GenerateReply(_ context.Context, text, _ string) (assistant.Reply, error) {
	return assistant.Reply{Text: "echo: " + text, Confidence: 0.8}, nil
}

func newTestVSS(t *testing.T) *vss.VSS {
	t.Helper()
	cfg := vss.DefaultVSSConfig()
	cfg.AutoEndTurn = false
	cfg.Timeouts = vss.Timeouts{Transcribe: time.Second, Respond: time.Second, Synthesize: time.Second}

	transcriber := stt.TranscriberFunc(func(_ context.Context, audio []byte, _ string) (string, error) {
		return "turn on the lights", nil
	})
	synth := tts.SynthesizerFunc(func(_ context.Context, text string) (tts.Speech, error) {
		return tts.Speech{Audio: []byte(text), Format: "mp3"}, nil
	})
	inv := vss.NewInvoker(transcriber, echoResponder{}, synth, vss.NewPool(2), cfg.Timeouts, Logger.NewNop())
	v, err := vss.NewVSS(cfg, vad.NewEnergyVAD(500), inv, Logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(v.Shutdown)
	return v
}

func newTestRouter(t *testing.T, v *vss.VSS, tokens *user.TokenService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewVoiceHandler(v, Logger.NewNop())
	r.GET("/health", h.Health)
	h.RegisterRoutes(r.Group("/api/v1"), AuthMiddleware(tokens, Logger.NewNop()))
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type wireEvent struct {
	Type        string  `json:"type"`
	Text        string  `json:"text"`
	AudioBase64 *string `json:"audio_base64"`
	Message     string  `json:"message"`
}

type outcomeBody struct {
	Outcome string      `json:"outcome"`
	Status  vss.Status  `json:"status"`
	Events  []wireEvent `json:"events"`
}

func TestRequestResponseTurn(t *testing.T) {
	v := newTestVSS(t)
	r := newTestRouter(t, v, nil)

	w := doJSON(t, r, http.MethodPost, "/api/v1/voice/sessions", CreateSessionRequest{SessionID: "kitchen"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "kitchen", created.SessionID)
	assert.Equal(t, vss.StateIdle, created.Status.State)

	chunk := ChunkRequest{AudioBase64: base64.StdEncoding.EncodeToString([]byte("opus-data")), Format: "webm"}
	w = doJSON(t, r, http.MethodPost, "/api/v1/voice/sessions/kitchen/chunks", chunk)
	require.Equal(t, http.StatusOK, w.Code)
	var chunkResp struct {
		Status      string `json:"status"`
		BufferBytes int    `json:"buffer_bytes"`
		State       string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &chunkResp))
	assert.Equal(t, "buffered", chunkResp.Status)
	assert.Equal(t, len("opus-data"), chunkResp.BufferBytes)
	assert.Equal(t, "LISTENING", chunkResp.State)

	w = doJSON(t, r, http.MethodPost, "/api/v1/voice/sessions/kitchen/process", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var processed outcomeBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &processed))
	assert.Equal(t, "responded", processed.Outcome)
	require.Len(t, processed.Events, 2)
	assert.Equal(t, "transcript", processed.Events[0].Type)
	assert.Equal(t, "turn on the lights", processed.Events[0].Text)
	assert.Equal(t, "response", processed.Events[1].Type)
	assert.Equal(t, "echo: turn on the lights", processed.Events[1].Text)
	require.NotNil(t, processed.Events[1].AudioBase64)
	assert.True(t, processed.Status.IsBotSpeaking)

	w = doJSON(t, r, http.MethodPost, "/api/v1/voice/sessions/kitchen/bot-speech-complete", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var done outcomeBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &done))
	assert.Equal(t, "idle", done.Outcome)
	assert.Equal(t, vss.StateIdle, done.Status.State)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/voice/sessions/kitchen", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, r, http.MethodGet, "/api/v1/voice/sessions/kitchen/status", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProcessWithoutAudioIsEmpty(t *testing.T) {
	v := newTestVSS(t)
	r := newTestRouter(t, v, nil)

	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/v1/voice/sessions", CreateSessionRequest{SessionID: "s"}).Code)

	for i := 0; i < 2; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/v1/voice/sessions/s/process", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var body outcomeBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "empty", body.Outcome)
		require.Len(t, body.Events, 1)
		assert.Equal(t, "empty", body.Events[0].Type)
	}
}

func TestChunkCreatesSessionOnFirstContact(t *testing.T) {
	v := newTestVSS(t)
	r := newTestRouter(t, v, nil)

	chunk := ChunkRequest{AudioBase64: base64.StdEncoding.EncodeToString([]byte("ogg")), Format: "ogg"}
	w := doJSON(t, r, http.MethodPost, "/api/v1/voice/sessions/fresh/chunks", chunk)
	require.Equal(t, http.StatusOK, w.Code)

	s, err := v.Get("fresh")
	require.NoError(t, err)
	assert.Equal(t, vss.RequestSession, s.Kind())
}

func TestChunkErrors(t *testing.T) {
	v := newTestVSS(t)
	r := newTestRouter(t, v, nil)

	w := doJSON(t, r, http.MethodPost, "/api/v1/voice/sessions/x/chunks", map[string]string{"format": "webm"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/voice/sessions/x/chunks", ChunkRequest{AudioBase64: "***", Format: "webm"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "decode", errResp.Details)

	// the decode error is not replayed on the next call
	w = doJSON(t, r, http.MethodGet, "/api/v1/voice/sessions/x/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var st struct {
		Events []wireEvent `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Empty(t, st.Events)
}

func TestUnknownSession(t *testing.T) {
	r := newTestRouter(t, newTestVSS(t), nil)
	for _, path := range []string{"process", "interrupt", "bot-speech-complete"} {
		w := doJSON(t, r, http.MethodPost, "/api/v1/voice/sessions/ghost/"+path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestDuplicateSession(t *testing.T) {
	r := newTestRouter(t, newTestVSS(t), nil)
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/v1/voice/sessions", CreateSessionRequest{SessionID: "dup"}).Code)
	assert.Equal(t, http.StatusConflict, doJSON(t, r, http.MethodPost, "/api/v1/voice/sessions", CreateSessionRequest{SessionID: "dup"}).Code)
}

func TestStreamSessionNotEndedOverHTTP(t *testing.T) {
	v := newTestVSS(t)
	r := newTestRouter(t, v, nil)
	s, err := v.Open("ws-owned", vss.StreamSession, vss.NewMailbox(4))
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodDelete, "/api/v1/voice/sessions/ws-owned", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, s.Closed())
}

func TestAuthMiddleware(t *testing.T) {
	tokens := user.NewTokenService("secret", time.Minute)
	r := newTestRouter(t, newTestVSS(t), tokens)

	w := doJSON(t, r, http.MethodPost, "/api/v1/voice/sessions", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/voice/sessions", nil, "Authorization", "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tok, _, err := tokens.IssueToken("caller")
	require.NoError(t, err)
	w = doJSON(t, r, http.MethodPost, "/api/v1/voice/sessions", nil, "Authorization", "Bearer "+tok)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/voice/sessions?token="+tok, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	// stats and health stay public
	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/api/v1/voice/stats", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/health", nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware())
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
