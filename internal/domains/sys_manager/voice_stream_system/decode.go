package voicestreamsystem

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/xpanvictor/xarvis-voice/pkg/io/wav"
)

const pcmClass = "pcm"

// Chunk is one decoded inbound audio payload.
type Chunk struct {
	Data   []byte
	Format string // normalized container name
	PCM    bool   // Data is raw 16-bit LE mono PCM and can be VAD-classified
}

// class groups formats that may share one turn buffer.
func (c Chunk) class() string {
	if c.PCM {
		return pcmClass
	}
	return c.Format
}

var opaqueFormats = map[string]string{
	"webm": "webm",
	"ogg":  "ogg",
	"opus": "ogg",
	"mp3":  "mp3",
	"mpeg": "mp3",
	"mpga": "mp3",
	"mp4":  "mp4",
	"m4a":  "m4a",
	"flac": "flac",
}

// DecodeChunk turns an audio_base64 payload into a Chunk. The payload may be
// plain base64 or a data URL. PCM and WAV input must match sampleRate.
func DecodeChunk(payload, format, defaultFormat string, sampleRate int) (Chunk, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = strings.ToLower(defaultFormat)
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return Chunk{}, newTurnError(KindDecode, "decode", "audio_base64 is not valid base64", err)
	}
	if len(data) == 0 {
		return Chunk{}, newTurnError(KindDecode, "decode", "empty audio payload", nil)
	}

	switch format {
	case "pcm", "pcm16", "s16le", "linear16":
		if len(data)%2 != 0 {
			return Chunk{}, newTurnError(KindDecode, "decode", "pcm payload has an odd byte count", nil)
		}
		return Chunk{Data: data, Format: pcmClass, PCM: true}, nil
	case "wav", "wave":
		f, pcm, err := wav.Decode(data)
		if err != nil {
			return Chunk{}, newTurnError(KindDecode, "decode", "malformed wav payload", err)
		}
		if f.BitsPerSample != 16 || f.Channels != 1 {
			return Chunk{}, newTurnError(KindDecode, "decode",
				fmt.Sprintf("wav must be 16-bit mono, got %d-bit %d channels", f.BitsPerSample, f.Channels), nil)
		}
		if f.SampleRate != sampleRate {
			return Chunk{}, newTurnError(KindDecode, "decode",
				fmt.Sprintf("wav sample rate %d does not match %d", f.SampleRate, sampleRate), nil)
		}
		return Chunk{Data: pcm, Format: pcmClass, PCM: true}, nil
	}

	if name, ok := opaqueFormats[format]; ok {
		return Chunk{Data: data, Format: name}, nil
	}
	return Chunk{}, newTurnError(KindDecode, "decode", fmt.Sprintf("unsupported audio format %q", format), nil)
}

func decodeBase64(payload string) ([]byte, error) {
	s := strings.TrimSpace(payload)
	// data:audio/webm;codecs=opus;base64,....
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(s)
}
