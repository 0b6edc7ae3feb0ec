package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestWriteReadRoundTrip(t *testing.T) {
	r := New(100, 2)
	r.Write([]byte{1, 2, 3, 4}, 2)
	data, frames, dropped := r.Read(2, true)
	assert.Equal(t, []byte{1, 2, 3, 4}, data)
	assert.Equal(t, 2, frames)
	assert.Equal(t, 0, dropped)
}

// TestOverflowScenario is the exact scenario from spec.md §8.1: capacity=2,
// 3 writes of 1 frame each (bytesPerFrame=1), then a read(1) that must
// report the dropped frame.
func TestOverflowScenario(t *testing.T) {
	r := New(2, 1)
	r.Write([]byte{0xAA}, 1)
	r.Write([]byte{0xBB}, 1)
	r.Write([]byte{0xCC}, 1)

	data, frames, dropped := r.Read(1, true)
	assert.Equal(t, []byte{0xBB}, data)
	assert.Equal(t, 1, frames)
	assert.Equal(t, 1, dropped)

	_, remainingFrames := sizeOf(r)
	assert.Equal(t, 1, remainingFrames)
}

func sizeOf(r *Ring) (int, int) {
	b, f := r.Size()
	return b, f
}

func TestSynchronizeResetsBuffer(t *testing.T) {
	r := New(10, 2)
	r.Write([]byte{1, 2, 3, 4}, 2)
	r.Synchronize(4)
	b, f := r.Size()
	assert.Equal(t, 0, b)
	assert.Equal(t, 0, f)

	r.Write([]byte{1, 2, 3, 4}, 1)
	data, frames, _ := r.Read(1, false)
	assert.Len(t, data, 4)
	assert.Equal(t, 1, frames)
}

func TestReadWithoutDropNeverDiscards(t *testing.T) {
	r := New(1, 1)
	r.Write([]byte{1, 2, 3}, 3)
	data, frames, dropped := r.Read(3, false)
	assert.Equal(t, []byte{1, 2, 3}, data)
	assert.Equal(t, 3, frames)
	assert.Equal(t, 0, dropped)
}

// TestReadRequestExceedsAvailableAfterDrop covers a request for more frames
// than remain once excess-over-capacity is dropped: Read must not slice past
// the buffer it actually holds.
func TestReadRequestExceedsAvailableAfterDrop(t *testing.T) {
	r := New(2, 1)
	r.Write([]byte{1}, 1)
	r.Write([]byte{2}, 1)
	r.Write([]byte{3}, 1)

	data, frames, dropped := r.Read(5, true)
	assert.Equal(t, []byte{2, 3}, data)
	assert.Equal(t, 2, frames)
	assert.Equal(t, 1, dropped)

	b, f := r.Size()
	assert.Equal(t, 0, b)
	assert.Equal(t, 0, f)
}

// TestBytesRemainingInvariant is the invariant from spec.md §4.3: after
// read, bytes_remaining == frames_remaining * bytes_per_frame.
func TestBytesRemainingInvariantProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		maxFrames := rapid.IntRange(1, 50).Draw(t, "maxFrames")
		bytesPerFrame := rapid.IntRange(1, 8).Draw(t, "bytesPerFrame")
		writes := rapid.IntRange(0, 20).Draw(t, "writes")
		readN := rapid.IntRange(0, 50).Draw(t, "readN")

		r := New(maxFrames, bytesPerFrame)
		for i := 0; i < writes; i++ {
			r.Write(make([]byte, bytesPerFrame), 1)
		}
		r.Read(readN, true)

		bytesRemaining, framesRemaining := r.Size()
		assert.Equal(t, framesRemaining*bytesPerFrame, bytesRemaining)
	})
}
