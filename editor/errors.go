package editor

import "errors"

// Rejection reasons passed to the reject hook. A rejected command changes
// nothing and emits no events.
var (
	ErrReentrant      = errors.New("command executed from within an event listener")
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownID      = errors.New("unknown id")
	ErrNoTarget       = errors.New("no target")
	ErrInvalidNote    = errors.New("invalid note")
	ErrInvalidClip    = errors.New("invalid clip")
	ErrInvalidValue   = errors.New("value out of range")
	ErrInvalidCurve   = errors.New("invalid curve")
	ErrInvalidSource  = errors.New("invalid source")
	ErrInvalidState   = errors.New("invalid state")
	ErrEmptySplit     = errors.New("split point outside the split object")
	ErrNothingToUndo  = errors.New("nothing to undo")
	ErrNothingToRedo  = errors.New("nothing to redo")
	ErrNoGesture      = errors.New("no gesture open")
	ErrOverridden     = errors.New("transport is controlled by the host")
)
