// SPDX-License-Identifier: EPL-2.0

// Command audtap plays an audio file and taps the rendered samples: it
// shows per-channel levels while the file plays and can record what was
// rendered to a WAV file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ik5/audtap/internal/ui"
	"github.com/ik5/audtap/media"
	"github.com/ik5/audtap/player"
	"github.com/ik5/audtap/sink"
	"github.com/ik5/audtap/tap"
)

var (
	logFile    = flag.String("log-file", "audtap.log", "Log file path")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	record     = flag.String("record", "", "Record the tapped audio to this WAV file")
	nullOutput = flag.Bool("null-output", false, "Render without an audio device, as fast as possible")
	frameSize  = flag.Int("frame-size", player.DefaultFrameSize, "Frames per rendered chunk")
	volume     = flag.Int("volume", 100, "Initial volume (0-100)")
	debug      = flag.Bool("debug", false, "Log at debug level")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, "audtap:", err)
		os.Exit(1)
	}
}

func run(path string) error {
	useTUI := !*noTUI

	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var w io.Writer = f
	if !useTUI {
		w = io.MultiWriter(os.Stdout, f)
	}
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))

	track, err := media.Open(path, nil)
	if err != nil {
		return err
	}
	defer func() { _ = track.Close() }()

	logger.Info("opened", slog.String("track", track.ID), slog.String("format", track.Format().String()))

	var out player.Output = player.Discard
	if !*nullOutput {
		oto := player.NewOto(logger)
		oto.SetVolume(*volume)
		out = oto
	}

	ended := make(chan error, 1)
	p := player.New(player.Config{
		FrameSize: *frameSize,
		Output:    out,
		Logger:    logger,
		OnEnd: func(_ *media.Track, err error) {
			select {
			case ended <- err:
			default:
			}
		},
	})
	defer func() { _ = p.Close() }()

	if err := p.Load(track); err != nil {
		return err
	}

	meter := sink.NewMeter()
	levels, err := tap.New(track, p, tap.WithLogger(logger), tap.WithSink(meter))
	if err != nil {
		return err
	}
	if err := levels.Attach(); err != nil {
		return err
	}
	defer detach(logger, levels)

	var rec *sink.Recorder
	var recSession *tap.Session
	if *record != "" {
		rec, err = sink.CreateRecorder(*record, track.Format(), logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				logger.Error("closing recording", slog.Any("error", err))
			}
		}()

		recSession, err = tap.New(track, p, tap.WithLogger(logger), tap.WithSink(rec))
		if err != nil {
			return err
		}
		if err := recSession.Attach(); err != nil {
			return err
		}
		defer detach(logger, recSession)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("player stopped", slog.Any("error", err))
		}
	}()

	if err := p.Play(); err != nil {
		return err
	}

	var tuiProg *tea.Program
	var ctrl *ui.Controls
	if useTUI {
		ctrl = ui.NewControls()
		tuiProg = ui.Run(track.ID, ctrl)
		go func() {
			if _, err := tuiProg.Run(); err != nil {
				logger.Error("TUI error", slog.Any("error", err))
			}
			cancel()
		}()
		defer tuiProg.Quit()

		go handleControls(ctx, p, ctrl, cancel, logger)
	}

	st := status{p: p, meter: meter, levels: levels, rec: rec, recSession: recSession, path: *record}
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	lastLog := time.Now()
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case err := <-ended:
			if err != nil {
				logger.Error("playback failed", slog.Any("error", err))
				return err
			}
			logger.Info("track ended", slog.Duration("elapsed", p.Elapsed()))
			return nil
		case <-ticker.C:
			msg := st.message()
			if tuiProg != nil {
				tuiProg.Send(msg)
				continue
			}
			if time.Since(lastLog) >= time.Second {
				lastLog = time.Now()
				logStatus(logger, msg)
			}
		}
	}
}

func handleControls(ctx context.Context, p *player.Player, ctrl *ui.Controls, quit func(), logger *slog.Logger) {
	vc, _ := p.Output().(player.VolumeControl)

	for {
		select {
		case <-ctx.Done():
			return
		case change := <-ctrl.Changes:
			if vc == nil {
				continue
			}
			vc.SetVolume(change.Volume)
			vc.SetMuted(change.Muted)
			logger.Debug("volume changed", slog.Int("volume", change.Volume), slog.Bool("muted", change.Muted))
		case <-ctrl.Pause:
			var err error
			if p.State() == player.StatePlaying {
				err = p.Pause()
			} else {
				err = p.Play()
			}
			if err != nil {
				logger.Warn("toggling pause", slog.Any("error", err))
			}
		case <-ctrl.Quit:
			quit()
			return
		}
	}
}

func detach(logger *slog.Logger, s *tap.Session) {
	if err := s.Detach(); err != nil {
		logger.Warn("detaching tap", slog.String("session", s.ID()), slog.Any("error", err))
	}
}

type status struct {
	p          *player.Player
	meter      *sink.Meter
	levels     *tap.Session
	rec        *sink.Recorder
	recSession *tap.Session
	path       string
}

func (s status) message() ui.StatusMsg {
	lv := s.meter.Levels()
	stats := s.levels.Stats()

	msg := ui.StatusMsg{
		State:     s.p.State().String(),
		Elapsed:   s.p.Elapsed(),
		Session:   s.levels.ID(),
		TapState:  s.levels.State().String(),
		RMS:       lv.RMS,
		Peak:      lv.Peak,
		Delivered: stats.Delivered,
		Dropped:   stats.Dropped,
		Errors:    stats.Errors,
		Err:       s.meter.Err(),
	}
	if lv.Chunks > 0 {
		msg.Format = lv.Format.String()
	}
	if vc, ok := s.p.Output().(player.VolumeControl); ok {
		msg.Volume = vc.Volume()
	}
	if s.rec != nil {
		msg.Recording = s.path
		msg.RecFrames = s.rec.Frames()
		msg.RecDrops = s.rec.Dropped()
	}

	return msg
}

func logStatus(logger *slog.Logger, msg ui.StatusMsg) {
	attrs := []any{
		slog.String("state", msg.State),
		slog.Duration("elapsed", msg.Elapsed.Round(time.Second)),
		slog.String("tap", msg.TapState),
		slog.Uint64("delivered", msg.Delivered),
		slog.Uint64("dropped", msg.Dropped),
	}
	for ch, peak := range msg.Peak {
		attrs = append(attrs, slog.String(fmt.Sprintf("peak%d", ch), fmt.Sprintf("%.1fdBFS", sink.DBFS(peak))))
	}
	if msg.Recording != "" {
		attrs = append(attrs, slog.Int64("recorded", msg.RecFrames))
	}

	logger.Info("status", attrs...)
}
