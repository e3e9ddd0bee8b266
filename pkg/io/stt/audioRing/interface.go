package audioring

import "errors"

// ErrOverflow is returned by Append when the chunk would push the buffer past
// its capacity. The buffer has been emptied when this is returned.
var ErrOverflow = errors.New("audio buffer overflow")

// AudioBuffer accumulates the raw bytes of one utterance under a hard byte cap.
// Implementations are not safe for concurrent use; the owning session
// serializes access.
type AudioBuffer interface {
	Append(chunk []byte) error
	// Take copies out everything buffered and leaves the buffer empty.
	Take() []byte
	Len() int
	Capacity() int
	Reset()
	// Release drops the backing storage. The buffer stays usable and
	// reallocates on the next Append.
	Release()
}
