// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/ik5/audtap/audio"
	"github.com/ik5/audtap/formats/wav"
	"github.com/ik5/audtap/tap"
)

// DefaultRecorderQueue is the number of buffers a Recorder holds for its
// writer goroutine.
const DefaultRecorderQueue = 64

var ErrRecorderClosed = errors.New("recorder is closed")

// Recorder writes tapped audio to a WAV stream on its own goroutine. The
// render goroutine only copies each buffer into a bounded queue; buffers
// that do not fit are dropped and counted.
type Recorder struct {
	w      *wav.Writer
	closer io.Closer
	log    *slog.Logger

	queue chan *audio.Buffer
	stop  chan struct{}
	done  chan struct{}

	closing   atomic.Bool
	closeOnce sync.Once
	written   atomic.Int64
	dropped   atomic.Uint64
	skipped   atomic.Uint64
	renderErr atomic.Pointer[error]

	// owned by the writer goroutine until done is closed
	writeErr error
}

// NewRecorder records into ws with the given format. Buffers of another
// channel count or sample rate are skipped. queue is the queue length;
// zero selects DefaultRecorderQueue. A nil logger discards.
func NewRecorder(ws io.WriteSeeker, format audio.Format, queue int, logger *slog.Logger) (*Recorder, error) {
	w, err := wav.NewWriter(ws, format)
	if err != nil {
		return nil, err
	}
	if queue <= 0 {
		queue = DefaultRecorderQueue
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := &Recorder{
		w:     w,
		log:   logger,
		queue: make(chan *audio.Buffer, queue),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go r.run()

	return r, nil
}

// CreateRecorder creates the file at path and records into it. Close
// closes the file.
func CreateRecorder(path string, format audio.Format, logger *slog.Logger) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating recording: %w", err)
	}

	r, err := NewRecorder(f, format, 0, logger)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f

	return r, nil
}

// BufferProduced implements tap.Sink.
func (r *Recorder) BufferProduced(_ *tap.Session, buf *audio.Buffer) {
	if r.closing.Load() {
		return
	}

	select {
	case r.queue <- buf.Copy():
	default:
		r.dropped.Add(1)
	}
}

// ErrorOccurred implements tap.Sink. The recording keeps what was written
// before the failure.
func (r *Recorder) ErrorOccurred(_ *tap.Session, err error) {
	r.renderErr.Store(&err)
}

func (r *Recorder) run() {
	defer close(r.done)

	for {
		select {
		case buf := <-r.queue:
			r.write(buf)
		case <-r.stop:
			for {
				select {
				case buf := <-r.queue:
					r.write(buf)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(buf *audio.Buffer) {
	if r.writeErr != nil {
		return
	}

	err := r.w.Write(buf)
	switch {
	case errors.Is(err, wav.ErrFormatMismatch):
		r.skipped.Add(1)
	case err != nil:
		r.writeErr = err
		r.log.Warn("recording stopped", slog.Any("error", err))
	default:
		r.written.Add(int64(buf.FrameCount()))
	}
}

// Close drains the queue, finishes the WAV header and closes the file
// opened by CreateRecorder. It returns the first write error.
func (r *Recorder) Close() error {
	err := ErrRecorderClosed
	r.closeOnce.Do(func() {
		r.closing.Store(true)
		close(r.stop)
		<-r.done

		err = errors.Join(r.writeErr, r.w.Close())
		if r.closer != nil {
			err = errors.Join(err, r.closer.Close())
		}

		r.log.Debug("recording closed",
			slog.Int64("frames", r.written.Load()),
			slog.Uint64("dropped", r.dropped.Load()))
	})

	return err
}

// Frames returns the number of frames written so far.
func (r *Recorder) Frames() int64 { return r.written.Load() }

// Dropped returns the number of buffers lost to a full queue.
func (r *Recorder) Dropped() uint64 { return r.dropped.Load() }

// Skipped returns the number of buffers whose format did not match.
func (r *Recorder) Skipped() uint64 { return r.skipped.Load() }

// RenderErr returns the render failure that ended the recording, if any.
func (r *Recorder) RenderErr() error {
	if p := r.renderErr.Load(); p != nil {
		return *p
	}
	return nil
}
