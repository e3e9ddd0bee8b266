package voicestreamsystem

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xpanvictor/xarvis-voice/pkg/io/wav"
)

func TestDecodeChunk(t *testing.T) {
	b64 := base64.StdEncoding.EncodeToString
	pcm := make([]byte, 320)
	pcm[0] = 7

	tests := []struct {
		name    string
		payload string
		format  string
		want    Chunk
		wantErr bool
	}{
		{name: "pcm", payload: b64(pcm), format: "pcm16", want: Chunk{Data: pcm, Format: "pcm", PCM: true}},
		{name: "wav unwraps to pcm", payload: b64(wav.Encode(pcm, 8000)), format: "WAV", want: Chunk{Data: pcm, Format: "pcm", PCM: true}},
		{name: "default format", payload: b64([]byte("opus")), want: Chunk{Data: []byte("opus"), Format: "webm"}},
		{name: "data url", payload: "data:audio/ogg;codecs=opus;base64," + b64([]byte("ogg!")), format: "opus", want: Chunk{Data: []byte("ogg!"), Format: "ogg"}},
		{name: "unpadded base64", payload: base64.RawStdEncoding.EncodeToString([]byte("mp3ish")), format: "mpeg", want: Chunk{Data: []byte("mp3ish"), Format: "mp3"}},
		{name: "wav at wrong rate", payload: b64(wav.Encode(pcm, 16000)), format: "wav", wantErr: true},
		{name: "odd pcm", payload: b64([]byte{1, 2, 3}), format: "pcm", wantErr: true},
		{name: "not base64", payload: "!!!", format: "webm", wantErr: true},
		{name: "empty", payload: "", format: "webm", wantErr: true},
		{name: "unknown format", payload: b64([]byte("x")), format: "aiff", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeChunk(tt.payload, tt.format, "webm", 8000)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, KindDecode, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
