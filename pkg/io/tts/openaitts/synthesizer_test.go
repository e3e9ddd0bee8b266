package openaitts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/speech", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["input"])
		assert.Equal(t, "tts-1", body["model"])
		assert.Equal(t, "alloy", body["voice"])
		assert.Equal(t, "mp3", body["response_format"])
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3fake"))
	}))
	defer srv.Close()

	s := New("", "", "", option.WithAPIKey("test"), option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	speech, err := s.Synthesize(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "mp3", speech.Format)
	assert.Equal(t, []byte("ID3fake"), speech.Audio)
	assert.Equal(t, "tts-1/alloy/mp3", s.Voice())
}
