package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/scenechat/internal/matcher"
)

// #region controller
// Controller is the submission entry point for one page. It admits at most
// one active session, holds the single retry candidate, and owns the
// thinking animations of its regions.
type Controller struct {
	cfg      Config
	surface  Surface
	resolver Resolver
	recorder Recorder
	log      *zap.Logger
	page     string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	busy    bool
	closed  bool
	retry   *candidate
	active  *Session
	loaders map[ID]*animation

	// paintMu orders surface calls against Close.
	paintMu sync.Mutex
	muted   bool
}

type candidate struct {
	id      ID
	prompt  string
	attempt int
}

// Option configures a Controller.
type Option func(*Controller)

// WithRecorder attaches a session recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithPage names the page the controller serves, for logs and reports.
func WithPage(page string) Option {
	return func(c *Controller) { c.page = page }
}

// NewController creates an idle controller rendering to surface.
func NewController(cfg Config, surface Surface, resolver Resolver, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		cfg:      cfg.withDefaults(),
		surface:  surface,
		resolver: resolver,
		recorder: NopRecorder{},
		log:      zap.NewNop(),
		ctx:      ctx,
		cancel:   cancel,
		loaders:  make(map[ID]*animation),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("session").With(zap.String("page", c.page))
	return c
}

// Busy reports whether a session is submitting, loading or typing.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// RetryAvailable reports whether Retry would start a session now or once
// the active one finishes.
func (c *Controller) RetryAvailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retry != nil
}

// State reports the active session's state, retry-ready while a retry
// candidate waits, and idle otherwise.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.active != nil:
		return c.active.State()
	case c.retry != nil:
		return StateRetryReady
	default:
		return StateIdle
	}
}

// #endregion controller

// #region submit
// Submit starts a session for prompt. It returns nil, doing nothing, when
// the prompt is blank, a session is already active, or the controller is
// closed.
func (c *Controller) Submit(prompt string) *Session {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil
	}

	c.mu.Lock()
	if c.closed || c.busy {
		busy := c.busy && !c.closed
		c.mu.Unlock()
		if busy {
			c.log.Debug("submission dropped while busy")
			c.recorder.Dropped(c.page, prompt)
		}
		return nil
	}
	c.busy = true
	s := newSession(NewID(), prompt, 1)
	s.StartedAt = time.Now()
	c.active = s
	c.wg.Add(1)
	c.mu.Unlock()

	promptID := NewID()
	c.paint(func(sf Surface) {
		sf.OpenRegion(promptID, RolePrompt, prompt)
		sf.OpenRegion(s.ID, RoleAnswer, "")
		sf.SetBusy(true)
	})
	go c.run(s)
	return s
}

// Retry re-runs the failed session in place, with the same id and prompt.
// The candidate is consumed; it returns nil when there is none, a session
// is active, or the controller is closed.
func (c *Controller) Retry() *Session {
	c.mu.Lock()
	if c.closed || c.busy || c.retry == nil {
		c.mu.Unlock()
		return nil
	}
	cand := c.retry
	c.retry = nil
	c.busy = true
	s := newSession(cand.id, cand.prompt, cand.attempt+1)
	s.StartedAt = time.Now()
	c.active = s
	c.wg.Add(1)
	c.mu.Unlock()

	c.paint(func(sf Surface) {
		sf.SetRetryAvailable(false)
		sf.SetBusy(true)
	})
	go c.run(s)
	return s
}

// Close abandons the active session, stops every timer, and waits for the
// session goroutines to exit. The surface receives no calls after Close
// returns.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.paintMu.Lock()
	c.muted = true
	c.paintMu.Unlock()
	c.wg.Wait()
}

// #endregion submit

// #region run
func (c *Controller) run(s *Session) {
	defer c.wg.Done()
	defer close(s.done)

	s.setState(StateLoading)
	c.beginThinking(s.ID)
	c.recorder.Started(c.report(s))

	matchStart := time.Now()
	out, err := c.resolve(s.Prompt)
	matchTook := time.Since(matchStart)

	floorMet := c.waitUntil(s.StartedAt.Add(c.cfg.MinLoading))
	c.endThinking(s.ID)
	if !floorMet || c.ctx.Err() != nil {
		c.abandon(s)
		return
	}

	rep := c.report(s)
	rep.MatchDuration = matchTook
	if err != nil {
		c.fail(s, err, rep)
		return
	}

	text := c.reply(out)
	s.setOutput(text)
	s.setState(StateTyping)
	c.paint(func(sf Surface) { sf.SetRegion(s.ID, ModePlain, "") })
	if !c.typeOut(s.ID, text) {
		c.abandon(s)
		return
	}

	s.setState(StateDone)
	c.mu.Lock()
	c.busy = false
	c.retry = nil
	c.active = nil
	c.mu.Unlock()
	c.paint(func(sf Surface) {
		sf.SetRetryAvailable(false)
		sf.SetBusy(false)
	})

	rep.Outcome, rep.Output, rep.FinishedAt = out, text, time.Now()
	c.recorder.Finished(rep)
	c.log.Info("session done",
		zap.String("session", string(s.ID)),
		zap.Int("attempt", s.Attempt),
		zap.String("outcome", string(out.Kind)),
		zap.Duration("match", matchTook))
}

// resolve runs the resolver and turns a panic into an error.
func (c *Controller) resolve(prompt string) (out matcher.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("match failed: %v", r)
		}
	}()
	return c.resolver.Resolve(c.ctx, prompt)
}

func (c *Controller) reply(out matcher.Outcome) string {
	switch out.Kind {
	case matcher.KindResolved:
		return out.Reply
	case matcher.KindUnpaired:
		return c.cfg.UnpairedText
	default:
		return c.cfg.UnmatchedText
	}
}

// waitUntil blocks until deadline. It returns false when the controller
// closed first.
func (c *Controller) waitUntil(deadline time.Time) bool {
	d := time.Until(deadline)
	if d <= 0 {
		return c.ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-c.ctx.Done():
		return false
	}
}

// typeOut reveals text one rune per interval. A newline becomes a line
// break piece.
func (c *Controller) typeOut(id ID, text string) bool {
	if text == "" {
		return true
	}
	tick := time.NewTicker(c.cfg.TypeInterval)
	defer tick.Stop()
	for _, r := range text {
		select {
		case <-c.ctx.Done():
			return false
		case <-tick.C:
		}
		p := Piece{Text: string(r)}
		if r == '\n' {
			p = Piece{LineBreak: true}
		}
		c.paint(func(sf Surface) { sf.AppendRegion(id, p) })
	}
	return true
}

// #endregion run

// #region failure
// fail renders the fault in the answer region and parks the session as the
// retry candidate.
func (c *Controller) fail(s *Session, err error, rep Report) {
	msg := "Error: " + err.Error()
	s.setErr(err)
	s.setOutput(msg)
	s.setState(StateError)
	c.paint(func(sf Surface) { sf.SetRegion(s.ID, ModeError, msg) })

	c.mu.Lock()
	c.retry = &candidate{id: s.ID, prompt: s.Prompt, attempt: s.Attempt}
	c.busy = false
	c.active = nil
	c.mu.Unlock()
	c.paint(func(sf Surface) {
		sf.SetRetryAvailable(true)
		sf.SetBusy(false)
	})
	s.setState(StateRetryReady)

	rep.Err, rep.Output, rep.FinishedAt = err, msg, time.Now()
	c.recorder.Finished(rep)
	c.log.Warn("session failed",
		zap.String("session", string(s.ID)),
		zap.Int("attempt", s.Attempt),
		zap.Error(err))
}

// abandon discards a session whose controller closed mid-flight.
func (c *Controller) abandon(s *Session) {
	s.setErr(c.ctx.Err())
	c.log.Debug("session abandoned", zap.String("session", string(s.ID)), zap.String("state", string(s.State())))
}

func (c *Controller) report(s *Session) Report {
	return Report{
		Page:      c.page,
		SessionID: s.ID,
		Attempt:   s.Attempt,
		Prompt:    s.Prompt,
		StartedAt: s.StartedAt,
	}
}

// paint forwards to the surface unless the controller has closed.
func (c *Controller) paint(fn func(Surface)) {
	c.paintMu.Lock()
	defer c.paintMu.Unlock()
	if c.muted {
		return
	}
	fn(c.surface)
}

// #endregion failure
