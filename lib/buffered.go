package lib

import (
	"io"
	"sync"
)

// FrameDecoder fills a preallocated frame buffer with the next frame,
// returning io.EOF after the last one. FfmpegReader is the production
// implementation.
type FrameDecoder interface {
	ReadInto(im Image) error
}

// BufferedFrameReader prefetches decoded frames on a background goroutine so
// decoding overlaps with the CPU-bound pipeline stages. Frame buffers are
// recycled through the extras pool once discarded.
type BufferedFrameReader struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buffer []Image
	offset int
	extras []Image
	next   int
	done   bool
	closed bool
	err    error
}

func NewBufferedFrameReader(decoder FrameDecoder, width, height, size int) *BufferedFrameReader {
	bfr := &BufferedFrameReader{}
	bfr.cond = sync.NewCond(&bfr.mu)
	for i := 0; i < size; i++ {
		bfr.extras = append(bfr.extras, NewImage(width, height))
	}

	go func() {
		bfr.mu.Lock()
		for {
			for len(bfr.extras) == 0 && !bfr.closed {
				bfr.cond.Wait()
			}
			if bfr.closed {
				bfr.mu.Unlock()
				return
			}
			im := bfr.extras[len(bfr.extras)-1]
			bfr.extras = bfr.extras[0 : len(bfr.extras)-1]
			bfr.mu.Unlock()

			err := decoder.ReadInto(im)

			bfr.mu.Lock()
			if err != nil || bfr.closed {
				bfr.done = true
				if err != nil && err != io.EOF {
					bfr.err = err
				}
				bfr.cond.Broadcast()
				bfr.mu.Unlock()
				return
			}
			bfr.buffer = append(bfr.buffer, im)
			bfr.cond.Broadcast()
		}
	}()

	return bfr
}

// GetFrame blocks until frame frameIdx is available and returns it, or
// reports the end of the stream. The returned buffer is valid until the
// frame is discarded.
func (bfr *BufferedFrameReader) GetFrame(frameIdx int) (Image, bool, error) {
	bfr.mu.Lock()
	defer bfr.mu.Unlock()

	for !bfr.done && bfr.offset+len(bfr.buffer) <= frameIdx {
		bfr.cond.Wait()
	}

	if frameIdx < bfr.offset+len(bfr.buffer) {
		return bfr.buffer[frameIdx-bfr.offset], false, nil
	}
	return Image{}, true, bfr.err
}

// Discard recycles frames below frameIdx.
func (bfr *BufferedFrameReader) Discard(frameIdx int) {
	bfr.mu.Lock()
	defer bfr.mu.Unlock()

	if frameIdx <= bfr.offset {
		return
	}
	pos := frameIdx - bfr.offset
	if pos > len(bfr.buffer) {
		pos = len(bfr.buffer)
	}

	discarded := bfr.buffer[0:pos]
	bfr.extras = append(bfr.extras, discarded...)
	n := copy(bfr.buffer[0:], bfr.buffer[pos:])
	bfr.buffer = bfr.buffer[0:n]
	bfr.offset += pos

	bfr.cond.Broadcast()
}

// Close stops the prefetch goroutine and wakes any blocked GetFrame call,
// which then observes the end of the stream. A producer blocked inside the
// decoder itself is released by closing the decoder. Safe to call more than
// once.
func (bfr *BufferedFrameReader) Close() {
	bfr.mu.Lock()
	bfr.closed = true
	bfr.done = true
	bfr.cond.Broadcast()
	bfr.mu.Unlock()
}

// Read pops frames in sequence, satisfying FrameSource. The returned frame
// is a copy and stays valid across subsequent reads.
func (bfr *BufferedFrameReader) Read() (Image, error) {
	im, done, err := bfr.GetFrame(bfr.next)
	if err != nil {
		return Image{}, err
	}
	if done {
		return Image{}, io.EOF
	}
	out := im.Copy()
	bfr.next++
	bfr.Discard(bfr.next)
	return out, nil
}
