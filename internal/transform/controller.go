package transform

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"
)

// Target receives the frames a session produces. Apply returns false when
// the manipulated object no longer exists, which aborts the session.
type Target interface {
	Apply(kind Kind, f Frame) bool
}

// TargetFunc adapts a function to Target.
type TargetFunc func(kind Kind, f Frame) bool

func (fn TargetFunc) Apply(kind Kind, f Frame) bool { return fn(kind, f) }

// Controller runs at most one session at a time.
type Controller struct {
	opts    Options
	session *Session
	target  Target
	capture *Capture
}

func NewController(opts Options) *Controller {
	return &Controller{opts: opts}
}

// Begin starts a session against target, ending any session already
// running. The acquirers run now and are released when the session ends
// however it ends.
func (c *Controller) Begin(target Target, s Session, acquirers ...Acquirer) {
	c.End()
	c.session = &s
	c.target = target
	c.capture = Acquire(acquirers...)
	slog.Debug("interaction started", "session", s.ID, "kind", s.Kind, "handle", s.Handle)
}

// Move advances the session to pointer and hands the new frame to the
// target. It returns false when no session is active or the session was
// aborted because its target disappeared.
func (c *Controller) Move(pointer r2.Vec) bool {
	if c.session == nil {
		return false
	}
	next, f := Step(*c.session, pointer, c.opts)
	if !c.target.Apply(next.Kind, f) {
		slog.Debug("interaction aborted", "session", next.ID, "reason", "target gone")
		c.End()
		return false
	}
	*c.session = next
	return true
}

// End finishes the active session, if any, and releases its capture.
func (c *Controller) End() {
	if c.session == nil {
		return
	}
	slog.Debug("interaction ended", "session", c.session.ID)
	c.capture.Release()
	c.session = nil
	c.target = nil
	c.capture = nil
}

// Active returns the running session.
func (c *Controller) Active() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}
