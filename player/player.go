// SPDX-License-Identifier: EPL-2.0

package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/audtap/audio"
	"github.com/ik5/audtap/media"
)

// DefaultFrameSize is the number of frames rendered per chunk when
// Config.FrameSize is zero.
const DefaultFrameSize = 1024

// State is the transport state of a Player.
type State int32

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Config holds player configuration. Zero values select defaults.
type Config struct {
	// FrameSize is the number of frames per rendered chunk.
	FrameSize int
	// Output receives every chunk after the taps. Defaults to Discard.
	Output Output
	Logger *slog.Logger
	// OnEnd is called from the render goroutine when the loaded track
	// stops producing audio. err is nil at end of stream.
	OnEnd func(track *media.Track, err error)
}

// Player renders one loaded track at a time into an Output and offers
// each rendered chunk to the processors installed on it.
//
// Rendering happens on the goroutine calling Run, or on the caller of
// RenderChunk. Processors run synchronously on that goroutine; a slow
// processor slows playback. Processors may remove their installation from
// inside a callback, but must not call Load, Stop or Close there.
type Player struct {
	cfg Config
	log *slog.Logger

	// renderMu serializes rendering with track replacement.
	renderMu sync.Mutex
	// mu guards installs and the fields below.
	mu     sync.Mutex
	track  *media.Track
	closed bool

	// installed processors, copy on write; read without locks by render.
	taps atomic.Pointer[[]*installation]

	state    atomic.Int32
	position atomic.Int64
	wake     chan struct{}
	done     chan struct{}

	// guarded by renderMu
	format     audio.Format
	ended      bool
	scratch    []float32
	outputOpen bool
	outputErr  bool
}

// New creates a stopped player with no track.
func New(cfg Config) *Player {
	if cfg.FrameSize <= 0 {
		cfg.FrameSize = DefaultFrameSize
	}
	if cfg.Output == nil {
		cfg.Output = Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	p := &Player{
		cfg:  cfg,
		log:  cfg.Logger,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	p.taps.Store(&[]*installation{})

	return p
}

// Output returns the configured output.
func (p *Player) Output() Output { return p.cfg.Output }

// FrameSize returns the number of frames per rendered chunk.
func (p *Player) FrameSize() int { return p.cfg.FrameSize }

// State returns the transport state.
func (p *Player) State() State { return State(p.state.Load()) }

// Track returns the loaded track, or nil.
func (p *Player) Track() *media.Track {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.track
}

// Position returns the frame offset of the next chunk in the loaded track.
func (p *Player) Position() int64 { return p.position.Load() }

// Elapsed is Position expressed as playback time.
func (p *Player) Elapsed() time.Duration {
	f := p.Track().Format()
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(p.position.Load()) * time.Second / time.Duration(f.SampleRate)
}

// Load makes track the current track and stops playback. Processors
// installed on the previous track fail with ErrTrackReplaced. The previous
// track is not closed.
func (p *Player) Load(track *media.Track) error {
	if err := track.Playable(); err != nil {
		return err
	}

	p.renderMu.Lock()
	defer p.renderMu.Unlock()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	prev := p.track
	p.track = track
	dropped := p.dropAllLocked()
	p.mu.Unlock()

	p.resetRenderLocked()
	p.setState(StateStopped)

	if prev != nil {
		failAll(dropped, fmt.Errorf("%w: %s", ErrTrackReplaced, prev.ID))
	}

	p.log.Debug("track loaded", slog.String("track", track.ID))

	return nil
}

// Play starts or resumes rendering the loaded track.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if p.track == nil {
		return ErrNoTrack
	}

	p.setState(StatePlaying)
	return nil
}

// Pause suspends rendering. Installed processors stay installed.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if p.State() == StatePlaying {
		p.setState(StatePaused)
	}
	return nil
}

// Stop ends playback and unloads the current track. Installed processors
// fail with ErrStopped.
func (p *Player) Stop() error {
	p.renderMu.Lock()
	defer p.renderMu.Unlock()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.track = nil
	dropped := p.dropAllLocked()
	p.mu.Unlock()

	p.resetRenderLocked()
	p.setState(StateStopped)

	failAll(dropped, ErrStopped)

	return nil
}

// Close stops the player for good. Installed processors fail with
// ErrClosed and Run returns. Close is idempotent.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	p.mu.Unlock()

	p.renderMu.Lock()
	defer p.renderMu.Unlock()

	p.mu.Lock()
	p.track = nil
	dropped := p.dropAllLocked()
	p.mu.Unlock()

	p.setState(StateStopped)
	failAll(dropped, ErrClosed)

	var err error
	if p.outputOpen {
		err = p.cfg.Output.Close()
		p.outputOpen = false
	}

	p.log.Debug("player closed")

	return err
}

// InstallTap registers proc on the render path of track, which must be
// the loaded audio track with a renderable format.
func (p *Player) InstallTap(track *media.Track, proc media.Processor) (media.Installation, error) {
	if proc == nil {
		return nil, errors.New("nil processor")
	}
	if err := track.Playable(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	if p.track != track {
		return nil, fmt.Errorf("%w: %s", ErrTrackNotLoaded, track.ID)
	}
	format := track.Format()
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	in := &installation{p: p, proc: proc}

	cur := *p.taps.Load()
	next := make([]*installation, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, in)
	p.taps.Store(&next)

	p.log.Debug("tap installed",
		slog.String("track", track.ID),
		slog.Int("taps", len(next)))

	return in, nil
}

// Taps returns the number of installed processors.
func (p *Player) Taps() int { return len(*p.taps.Load()) }

// Run renders the loaded track while the player is playing, until ctx is
// done or the player is closed. A track reaching its end leaves the player
// stopped and Run waiting for the next Play.
func (p *Player) Run(ctx context.Context) error {
	for {
		if p.State() != StatePlaying {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-p.done:
				return nil
			case <-p.wake:
				continue
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.done:
			return nil
		default:
		}

		err := p.RenderChunk()
		switch {
		case err == nil:
		case errors.Is(err, ErrClosed):
			return nil
		case errors.Is(err, ErrNoTrack):
			p.setState(StateStopped)
		default:
			p.setState(StateStopped)
			if errors.Is(err, io.EOF) {
				err = nil
				p.log.Debug("track ended")
			} else {
				p.log.Warn("render stopped", slog.Any("error", err))
			}
			if p.cfg.OnEnd != nil {
				p.cfg.OnEnd(p.Track(), err)
			}
		}
	}
}

// RenderChunk renders the next chunk of the loaded track regardless of
// the transport state. It returns io.EOF once the track has ended and
// ErrNoTrack when nothing is loaded. A read failure of the track is
// reported to every installed processor and returned.
func (p *Player) RenderChunk() error {
	p.renderMu.Lock()
	defer p.renderMu.Unlock()

	p.mu.Lock()
	track, closed := p.track, p.closed
	p.mu.Unlock()

	if closed {
		return ErrClosed
	}
	if track == nil {
		return ErrNoTrack
	}
	if p.ended {
		return io.EOF
	}

	if err := p.checkFormatLocked(track); err != nil {
		return err
	}

	need := p.format.Samples(p.cfg.FrameSize)
	if cap(p.scratch) < need {
		p.scratch = make([]float32, need)
	}
	scratch := p.scratch[:need]

	filled, readErr := fill(track.Source, scratch)
	filled -= filled % p.format.Channels

	if filled > 0 {
		p.dispatch(scratch[:filled])
		p.write(scratch[:filled])
		p.position.Add(int64(filled / p.format.Channels))
	}

	switch {
	case readErr == nil:
		return nil
	case errors.Is(readErr, io.EOF):
		p.ended = true
		if filled > 0 {
			return nil
		}
		return io.EOF
	default:
		p.ended = true
		err := fmt.Errorf("reading %s: %w", track.ID, readErr)
		failAll(p.dropAll(), err)
		return err
	}
}

// checkFormatLocked opens the output for the track format and fails the
// installed processors when the format changed since the last chunk.
func (p *Player) checkFormatLocked(track *media.Track) error {
	f := track.Format()
	if f == p.format {
		return nil
	}

	if p.format != (audio.Format{}) {
		err := fmt.Errorf("%w: %s to %s", ErrFormatChanged, p.format, f)
		p.log.Warn("render format changed",
			slog.String("from", p.format.String()),
			slog.String("to", f.String()))
		failAll(p.dropAll(), err)
	}

	if err := f.Validate(); err != nil {
		p.ended = true
		return fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	p.format = f

	if err := p.cfg.Output.Open(f); err != nil {
		p.log.Warn("opening output", slog.Any("error", err))
		return nil
	}
	p.outputOpen = true

	return nil
}

// dispatch offers samples to every installed processor in install order.
func (p *Player) dispatch(samples []float32) {
	offset := p.position.Load()

	for _, in := range *p.taps.Load() {
		if in.removed.Load() {
			continue
		}

		buf, err := audio.NewBuffer(p.format, in.seq, offset, samples)
		if err != nil {
			p.log.Error("building buffer", slog.Any("error", err))
			return
		}
		in.seq++
		in.proc.Process(buf)
	}
}

// write hands samples to the output. Output failures are logged once per
// failing streak and never reach processors.
func (p *Player) write(samples []float32) {
	err := p.cfg.Output.Write(samples)
	switch {
	case err != nil && !p.outputErr:
		p.outputErr = true
		p.log.Warn("output write failed", slog.Any("error", err))
	case err == nil && p.outputErr:
		p.outputErr = false
		p.log.Info("output recovered")
	}
}

func (p *Player) resetRenderLocked() {
	p.format = audio.Format{}
	p.ended = false
	p.position.Store(0)
}

func (p *Player) setState(s State) {
	if State(p.state.Swap(int32(s))) == s {
		return
	}

	p.log.Debug("transport state", slog.String("state", s.String()))

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Player) dropAll() []*installation {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.dropAllLocked()
}

func (p *Player) dropAllLocked() []*installation {
	old := *p.taps.Swap(&[]*installation{})
	for _, in := range old {
		in.removed.Store(true)
	}
	return old
}

func (p *Player) remove(in *installation) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur := *p.taps.Load()
	i := slices.Index(cur, in)
	if i < 0 {
		return
	}

	next := slices.Delete(slices.Clone(cur), i, i+1)
	p.taps.Store(&next)

	p.log.Debug("tap removed", slog.Int("taps", len(next)))
}

// failAll must be called without holding p.mu, since processors may
// remove themselves while handling the failure.
func failAll(dropped []*installation, err error) {
	for _, in := range dropped {
		in.proc.Fail(err)
	}
}

// fill reads from src until dst is full or the source reports an error.
func fill(src audio.Source, dst []float32) (int, error) {
	filled := 0
	for filled < len(dst) {
		n, err := src.ReadSamples(dst[filled:])
		filled += n
		if err != nil {
			return filled, err
		}
		if n == 0 {
			return filled, io.ErrNoProgress
		}
	}
	return filled, nil
}

// installation is a processor on a player's render path.
type installation struct {
	p       *Player
	proc    media.Processor
	seq     uint64 // render goroutine only
	removed atomic.Bool
}

// Remove takes the processor off the render path. A chunk being
// dispatched concurrently may still reach it.
func (in *installation) Remove() error {
	if !in.removed.CompareAndSwap(false, true) {
		return nil
	}
	in.p.remove(in)
	return nil
}
