// Package wav reads and writes the minimal RIFF/WAVE layout used for 16-bit
// PCM mono audio travelling between the voice engine and its collaborators.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const headerSize = 44

var (
	ErrNotWAV      = errors.New("not a RIFF/WAVE stream")
	ErrUnsupported = errors.New("unsupported wav encoding")
)

// Format describes the PCM stream carried in a wav container.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// Encode wraps raw 16-bit little-endian mono PCM in a canonical 44 byte header.
func Encode(pcm []byte, sampleRate int) []byte {
	out := make([]byte, headerSize+len(pcm))
	dataSize := uint32(len(pcm))

	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], 36+dataSize)
	copy(out[8:12], "WAVE")

	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:24], 1) // mono
	binary.LittleEndian.PutUint32(out[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(out[32:34], 2)
	binary.LittleEndian.PutUint16(out[34:36], 16)

	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], dataSize)
	copy(out[44:], pcm)
	return out
}

// Decode walks the RIFF chunks and returns the fmt description together with
// the payload of the data chunk. Only uncompressed PCM is accepted.
func Decode(b []byte) (Format, []byte, error) {
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return Format{}, nil, ErrNotWAV
	}

	var (
		f      Format
		gotFmt bool
	)
	off := 12
	for off+8 <= len(b) {
		id := string(b[off : off+4])
		size := int(binary.LittleEndian.Uint32(b[off+4 : off+8]))
		body := off + 8
		if size < 0 || body+size > len(b) {
			// streaming writers leave the data size unset; take what is there
			if id == "data" && gotFmt {
				return f, b[body:], nil
			}
			return Format{}, nil, fmt.Errorf("%w: truncated %q chunk", ErrNotWAV, id)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return Format{}, nil, fmt.Errorf("%w: short fmt chunk", ErrNotWAV)
			}
			if tag := binary.LittleEndian.Uint16(b[body : body+2]); tag != 1 {
				return Format{}, nil, fmt.Errorf("%w: format tag %d", ErrUnsupported, tag)
			}
			f.Channels = int(binary.LittleEndian.Uint16(b[body+2 : body+4]))
			f.SampleRate = int(binary.LittleEndian.Uint32(b[body+4 : body+8]))
			f.BitsPerSample = int(binary.LittleEndian.Uint16(b[body+14 : body+16]))
			gotFmt = true
		case "data":
			if !gotFmt {
				return Format{}, nil, fmt.Errorf("%w: data before fmt", ErrNotWAV)
			}
			return f, b[body : body+size], nil
		}

		off = body + size
		if size%2 == 1 {
			off++ // chunks are word aligned
		}
	}
	return Format{}, nil, fmt.Errorf("%w: no data chunk", ErrNotWAV)
}
