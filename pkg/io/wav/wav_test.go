package wav

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0}
	b := Encode(pcm, 16000)
	require.Len(t, b, 44+len(pcm))

	f, data, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, Format{SampleRate: 16000, Channels: 1, BitsPerSample: 16}, f)
	assert.Equal(t, pcm, data)
}

func TestDecodeSkipsUnknownChunks(t *testing.T) {
	b := Encode([]byte{5, 0}, 8000)
	// splice a LIST chunk between fmt and data
	list := append([]byte("LIST"), 0, 0, 0, 0)
	binary.LittleEndian.PutUint32(list[4:], 3)
	list = append(list, 'a', 'b', 'c', 0)
	spliced := append(append(append([]byte{}, b[:36]...), list...), b[36:]...)

	f, data, err := Decode(spliced)
	require.NoError(t, err)
	assert.Equal(t, 8000, f.SampleRate)
	assert.Equal(t, []byte{5, 0}, data)
}

func TestDecodeRejects(t *testing.T) {
	_, _, err := Decode([]byte("hello world, not audio"))
	assert.ErrorIs(t, err, ErrNotWAV)

	b := Encode([]byte{1, 0}, 16000)
	binary.LittleEndian.PutUint16(b[20:22], 3) // float
	_, _, err = Decode(b)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestDecodeStreamingSize(t *testing.T) {
	b := Encode([]byte{1, 0, 2, 0}, 16000)
	binary.LittleEndian.PutUint32(b[40:44], 0xFFFFFFF0)
	_, data, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 2, 0}, data)
}
