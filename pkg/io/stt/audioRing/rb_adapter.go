package audioring

import (
	"github.com/smallnest/ringbuffer"
)

// DefaultInitialSize is the first allocation of a buffer built with New.
const DefaultInitialSize = 32 * 1024

type rb_impl struct {
	limit   int
	initial int
	rb      *ringbuffer.RingBuffer
}

// New returns a buffer capped at limit bytes that starts small and grows on
// demand.
func New(limit int) AudioBuffer {
	return NewSized(limit, DefaultInitialSize)
}

// NewSized is New with an explicit first allocation. Storage doubles on each
// growth step and never exceeds limit.
func NewSized(limit, initial int) AudioBuffer {
	if initial <= 0 || initial > limit {
		initial = limit
	}
	return &rb_impl{limit: limit, initial: initial}
}

// Append implements AudioBuffer.
func (r *rb_impl) Append(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}
	if len(chunk) > r.limit || r.Len()+len(chunk) > r.limit {
		// discard the whole utterance, the session recovers with an empty buffer
		r.Release()
		return ErrOverflow
	}
	r.reserve(len(chunk))
	if _, err := r.rb.Write(chunk); err != nil {
		r.Release()
		return err
	}
	return nil
}

// reserve makes room for n more bytes, doubling the ring until it fits.
// Callers have already checked the total against limit.
func (r *rb_impl) reserve(n int) {
	if r.rb == nil {
		size := r.initial
		for size < n {
			size *= 2
		}
		r.rb = ringbuffer.New(min(size, r.limit)).SetBlocking(false)
		return
	}
	if r.rb.Free() >= n {
		return
	}

	need := r.rb.Length() + n
	size := r.rb.Capacity()
	for size < need {
		size *= 2
	}
	grown := ringbuffer.NewBuffer(make([]byte, min(size, r.limit))).SetBlocking(false)
	if held := r.rb.Bytes(nil); len(held) > 0 {
		_, _ = grown.Write(held)
	}
	r.rb = grown
}

// Take implements AudioBuffer.
func (r *rb_impl) Take() []byte {
	if r.rb == nil || r.rb.IsEmpty() {
		return nil
	}
	out := r.rb.Bytes(nil)
	r.rb.Reset()
	return out
}

// Len implements AudioBuffer.
func (r *rb_impl) Len() int {
	if r.rb == nil {
		return 0
	}
	return r.rb.Length()
}

// Capacity implements AudioBuffer.
func (r *rb_impl) Capacity() int {
	return r.limit
}

// Allocated reports the bytes of backing storage currently held.
func (r *rb_impl) Allocated() int {
	if r.rb == nil {
		return 0
	}
	return r.rb.Capacity()
}

// Reset implements AudioBuffer.
func (r *rb_impl) Reset() {
	if r.rb != nil {
		r.rb.Reset()
	}
}

// Release implements AudioBuffer.
func (r *rb_impl) Release() {
	r.rb = nil
}
