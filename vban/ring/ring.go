// Package ring implements the frame ring (C3): a byte buffer with a
// parallel frame-count scalar shared between a network producer goroutine
// and a device-callback consumer, both accessing it directly under one
// mutex rather than through a coroutine-scheduled hop.
package ring

import "sync"

// Ring is a byte buffer paired with a frame-count, both guarded by one
// mutex. Overflow is handled at read time: excess frames beyond
// maxFrameCount are dropped from the front before satisfying the read.
//
// Ground: original_source's aiovban_pyaudio FrameBuffer (threading.Lock,
// same write/size/read/synchronize contract).
type Ring struct {
	mu            sync.Mutex
	buf           []byte
	frameCount    int
	maxFrameCount int
	bytesPerFrame int
}

// New creates a Ring that keeps at most maxFrameCount frames of
// bytesPerFrame width.
func New(maxFrameCount, bytesPerFrame int) *Ring {
	return &Ring{
		maxFrameCount: maxFrameCount,
		bytesPerFrame: bytesPerFrame,
	}
}

// Write appends data, which must represent exactly frames frames. No cap is
// enforced at write time; overflow is discarded on the next Read.
func (r *Ring) Write(data []byte, frames int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf = append(r.buf, data...)
	r.frameCount += frames
}

// Read returns up to numFrames frames from the front of the buffer. If
// dropFrames is true and the buffer holds more than maxFrameCount frames,
// the oldest excess frames are discarded first (framesDropped reports how
// many). After Read, the returned byte count always equals
// framesReturned*bytesPerFrame.
func (r *Ring) Read(numFrames int, dropFrames bool) (data []byte, framesReturned, framesDropped int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	excess := 0
	bytesToDrop := 0
	if dropFrames {
		excess = r.frameCount - r.maxFrameCount
		if excess < 0 {
			excess = 0
		}
		bytesToDrop = r.bytesPerFrame * excess
	}

	available := r.frameCount - excess
	maxAvailable := numFrames
	if available < maxAvailable {
		maxAvailable = available
	}
	bytesForFrames := r.bytesPerFrame * maxAvailable

	out := make([]byte, bytesForFrames)
	copy(out, r.buf[bytesToDrop:bytesToDrop+bytesForFrames])
	r.buf = r.buf[bytesToDrop+bytesForFrames:]

	r.frameCount -= maxAvailable + excess
	if r.frameCount < 0 {
		r.frameCount = 0
	}

	return out, maxAvailable, excess
}

// Synchronize clears the buffer and frame count and sets a new frame width,
// atomically from the perspective of any concurrent Write/Read.
func (r *Ring) Synchronize(bytesPerFrame int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf = nil
	r.frameCount = 0
	r.bytesPerFrame = bytesPerFrame
}

// Size returns the current buffer size in bytes and frame count.
func (r *Ring) Size() (bytes, frames int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buf), r.frameCount
}
