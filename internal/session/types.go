package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/scenechat/internal/matcher"
)

// #region state
// State is a step of the response-session lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateLoading    State = "loading"
	StateTyping     State = "typing"
	StateDone       State = "done"
	StateError      State = "error"
	StateRetryReady State = "retry-ready"
)

// #endregion state

// #region ids
// ID names an output region. The answer region's id doubles as the session
// id, so a retry renders into the same region.
type ID string

// NewID returns a fresh random id.
func NewID() ID {
	return ID(uuid.NewString())
}

// #endregion ids

// #region surface
// Role tells the surface what an output region holds.
type Role string

const (
	RolePrompt Role = "prompt"
	RoleAnswer Role = "answer"
)

// Mode is the display treatment of a region's content.
type Mode string

const (
	ModeLoading Mode = "loading"
	ModePlain   Mode = "plain"
	ModeError   Mode = "error"
)

// Piece is one step of the typed reveal: a character, or a line break.
type Piece struct {
	Text      string `json:"text,omitempty"`
	LineBreak bool   `json:"break,omitempty"`
}

// Surface is the rendering collaborator. Calls may come from different
// goroutines but never concurrently for the same region.
type Surface interface {
	OpenRegion(id ID, role Role, text string)
	SetRegion(id ID, mode Mode, text string)
	AppendRegion(id ID, p Piece)
	SetBusy(busy bool)
	SetRetryAvailable(available bool)
}

// #endregion surface

// #region resolver
// Resolver turns a prompt into a match outcome. A returned error is the
// only path to the error state.
type Resolver interface {
	Resolve(ctx context.Context, prompt string) (matcher.Outcome, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, prompt string) (matcher.Outcome, error)

func (f ResolverFunc) Resolve(ctx context.Context, prompt string) (matcher.Outcome, error) {
	return f(ctx, prompt)
}

// #endregion resolver
