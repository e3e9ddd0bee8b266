package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xpanvictor/xarvis-voice/internal/config"
	vss "github.com/xpanvictor/xarvis-voice/internal/domains/sys_manager/voice_stream_system"
	"github.com/xpanvictor/xarvis-voice/internal/domains/user"
	"github.com/xpanvictor/xarvis-voice/internal/handlers"
	"github.com/xpanvictor/xarvis-voice/internal/handlers/websocket"
	"github.com/xpanvictor/xarvis-voice/pkg/Logger"
	"github.com/xpanvictor/xarvis-voice/pkg/io/stt"
	"github.com/xpanvictor/xarvis-voice/pkg/io/stt/vad"
)

func newTestDeps(t *testing.T, secret string) Dependencies {
	t.Helper()
	transcriber := stt.TranscriberFunc(func(context.Context, []byte, string) (string, error) {
		return "", nil
	})
	inv := vss.NewInvoker(transcriber, nil, nil, vss.NewPool(1), vss.Timeouts{}, Logger.NewNop())
	v, err := vss.NewVSS(vss.DefaultVSSConfig(), vad.NewEnergyVAD(500), inv, Logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(v.Shutdown)

	return Dependencies{
		Config:       &config.Settings{Debug: true},
		Logger:       Logger.NewNop(),
		Tokens:       user.NewTokenService(secret, time.Minute),
		VoiceHandler: handlers.NewVoiceHandler(v, Logger.NewNop()),
		WSHandler:    websocket.NewWebSocketHandler(v, 0, Logger.NewNop()),
	}
}

func TestRoutesMounted(t *testing.T) {
	r := NewRouter(newTestDeps(t, ""))

	for _, path := range []string{"/", "/health", "/api/v1/voice/stats", "/ws/stats", "/swagger/doc.json"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestVoiceSocketRequiresToken(t *testing.T) {
	r := NewRouter(newTestDeps(t, "secret"))

	req := httptest.NewRequest(http.MethodGet, "/ws/voice", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
