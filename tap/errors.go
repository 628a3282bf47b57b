// SPDX-License-Identifier: EPL-2.0

package tap

import (
	"errors"
	"fmt"
)

var (
	ErrNilPlayer        = errors.New("player cannot be nil")
	ErrAttachmentFailed = errors.New("attachment failed")
	ErrRenderFailure    = errors.New("render failure")
	ErrInvalidState     = errors.New("invalid session state")
)

// AttachError is returned by Attach when the tap could not be installed.
// It matches ErrAttachmentFailed and unwraps to the cause.
type AttachError struct {
	TrackID string
	Err     error
}

func (e *AttachError) Error() string {
	if e.TrackID == "" {
		return fmt.Sprintf("%v: %v", ErrAttachmentFailed, e.Err)
	}
	return fmt.Sprintf("%v: track %q: %v", ErrAttachmentFailed, e.TrackID, e.Err)
}

func (e *AttachError) Unwrap() error { return e.Err }

func (e *AttachError) Is(target error) bool { return target == ErrAttachmentFailed }

// RenderError is delivered through Sink.ErrorOccurred when the render path
// fails while attached. It matches ErrRenderFailure and unwraps to the
// cause reported by the player.
type RenderError struct {
	SessionID string
	Err       error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%v: session %s: %v", ErrRenderFailure, e.SessionID, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func (e *RenderError) Is(target error) bool { return target == ErrRenderFailure }

// StateError is returned when an operation is not valid in the session's
// current state. The state is left unchanged.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%v: cannot %s while %s", ErrInvalidState, e.Op, e.State)
}

func (e *StateError) Is(target error) bool { return target == ErrInvalidState }
