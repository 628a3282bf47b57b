// SPDX-License-Identifier: EPL-2.0

package tap

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/ik5/audtap/audio"
	"github.com/ik5/audtap/media"
)

// State is the attachment state of a Session.
type State int32

const (
	// StateIdle is a created session that has not been attached.
	StateIdle State = iota
	// StateAttached means the session's processor is on the render path.
	StateAttached
	// StateDetached is terminal. A new Session is needed to tap again.
	StateDetached
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAttached:
		return "attached"
	case StateDetached:
		return "detached"
	default:
		return "unknown"
	}
}

// Player is the host side of a tap: something that renders tracks and
// lets processors observe the result. *player.Player implements it.
type Player interface {
	InstallTap(track *media.Track, proc media.Processor) (media.Installation, error)
}

// Stats counts what a session did with the chunks it was offered.
type Stats struct {
	// Delivered chunks reached a sink.
	Delivered uint64
	// Dropped chunks arrived while no live sink was set.
	Dropped uint64
	// Errors counts render failures, delivered or not.
	Errors uint64
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSink sets the initial sink, as SetSink would.
func WithSink(sink Sink) Option {
	return func(s *Session) {
		s.SetSink(sink)
	}
}

// Session taps the rendered audio of one track in one player and
// forwards it to a Sink.
//
// Attach and Detach may be called from any goroutine, including from
// inside a Sink callback. SetSink and ClearSink may be called at any time.
type Session struct {
	id     uuid.UUID
	track  *media.Track
	player Player
	log    *slog.Logger

	// mu serializes Attach and Detach.
	mu   sync.Mutex
	h    *handler
	inst media.Installation

	state atomic.Int32
	sink  atomic.Pointer[sinkBox]

	delivered atomic.Uint64
	dropped   atomic.Uint64
	errs      atomic.Uint64
}

// New creates an idle session for track in p. track may be nil, in which
// case Attach fails.
func New(track *media.Track, p Player, opts ...Option) (*Session, error) {
	if p == nil {
		return nil, ErrNilPlayer
	}

	s := &Session{
		id:     uuid.New(),
		track:  track,
		player: p,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(slog.String("session", s.id.String()))

	return s, nil
}

func (s *Session) ID() string          { return s.id.String() }
func (s *Session) Track() *media.Track { return s.track }
func (s *Session) State() State        { return State(s.state.Load()) }

func (s *Session) Stats() Stats {
	return Stats{
		Delivered: s.delivered.Load(),
		Dropped:   s.dropped.Load(),
		Errors:    s.errs.Load(),
	}
}

// SetSink replaces the sink. A nil sink is the same as ClearSink. The
// session does not own the sink: clear it before the sink goes away, or
// pass it through Weak.
func (s *Session) SetSink(sink Sink) {
	if sink == nil {
		s.ClearSink()
		return
	}
	s.sink.Store(&sinkBox{sink: sink})
}

// ClearSink removes the sink. Chunks rendered without a sink are dropped
// and counted in Stats.
func (s *Session) ClearSink() { s.sink.Store(nil) }

// Sink returns the sink as set, or nil.
func (s *Session) Sink() Sink {
	if b := s.sink.Load(); b != nil {
		return b.sink
	}
	return nil
}

// liveSink returns the sink to dispatch to, or nil when there is none or
// a weak sink was collected.
func (s *Session) liveSink() Sink {
	sink := s.Sink()
	if r, ok := sink.(resolver); ok {
		return r.resolve()
	}
	return sink
}

// Attach installs the session on the render path of its track. The
// session reports StateAttached before the player can dispatch to it. On
// failure it returns an *AttachError and the session is detached for
// good. Attaching a session that is not idle returns a *StateError.
func (s *Session) Attach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.State(); st != StateIdle {
		return &StateError{Op: "attach", State: st}
	}

	h := &handler{s: s}
	h.live.Store(true)
	s.state.Store(int32(StateAttached))

	inst, err := s.install(h)
	if err != nil {
		h.live.Store(false)
		s.state.Store(int32(StateDetached))

		s.log.Warn("attach failed", slog.Any("error", err))

		return &AttachError{TrackID: s.trackID(), Err: err}
	}

	s.h = h
	s.inst = inst

	// a render failure may already have detached the session
	if s.State() == StateAttached {
		s.log.Debug("attached", slog.String("track", s.trackID()))
	}

	return nil
}

func (s *Session) install(h *handler) (media.Installation, error) {
	if err := s.track.Playable(); err != nil {
		return nil, err
	}

	inst, err := s.player.InstallTap(s.track, h)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, errNoInstallation
	}

	return inst, nil
}

// Detach stops delivery and removes the installation. No chunk or error
// is dispatched after Detach returns, but a call already running inside
// the sink may complete. Detach never waits for it. Detach is idempotent;
// only the call that removes the installation can return an error, and
// the session is detached either way.
func (s *Session) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.h != nil {
		s.h.live.Store(false)
	}
	prev := State(s.state.Swap(int32(StateDetached)))

	inst := s.inst
	s.inst = nil
	if inst == nil {
		return nil
	}

	if prev != StateDetached {
		s.log.Debug("detached")
	}

	if err := inst.Remove(); err != nil {
		s.log.Warn("removing tap", slog.Any("error", err))
		return fmt.Errorf("removing tap: %w", err)
	}

	return nil
}

func (s *Session) trackID() string {
	if s.track == nil {
		return ""
	}
	return s.track.ID
}

var errNoInstallation = errors.New("player returned no installation")

// handler is the media.Processor a session installs. Its live flag is
// the only thing the render path checks before dispatching.
type handler struct {
	s    *Session
	live atomic.Bool
}

func (h *handler) Process(buf *audio.Buffer) {
	if !h.live.Load() {
		return
	}

	s := h.s
	sink := s.liveSink()
	if sink == nil {
		s.dropped.Add(1)
		return
	}

	sink.BufferProduced(s, buf)
	s.delivered.Add(1)
}

func (h *handler) Fail(err error) {
	if !h.live.CompareAndSwap(true, false) {
		return
	}

	s := h.s
	s.state.Store(int32(StateDetached))
	s.errs.Add(1)

	rerr := &RenderError{SessionID: s.id.String(), Err: err}

	sink := s.liveSink()
	if sink == nil {
		s.log.Warn("render failure with no sink", slog.Any("error", err))
		return
	}

	s.log.Debug("render failure", slog.Any("error", err))
	sink.ErrorOccurred(s, rerr)
}
