// Package chat assembles conversations: a session controller rendering into
// an event stream, matching against a corpus snapshot pinned for the page.
package chat

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/scenechat/internal/matcher"
	"github.com/danielpatrickdp/scenechat/internal/session"
	"github.com/danielpatrickdp/scenechat/internal/surface"
)

// #region factory
// Factory opens conversations that share a config, a corpus source and
// recorders.
type Factory struct {
	cfg      session.Config
	corpora  matcher.CorpusProvider
	recorder session.Recorder
	log      *zap.Logger
	buffer   int
	debug    *matcher.Engine
}

// NewFactory creates a Factory. Recorders are notified of every session of
// every conversation.
func NewFactory(cfg session.Config, corpora matcher.CorpusProvider, log *zap.Logger, recorders ...session.Recorder) *Factory {
	if log == nil {
		log = zap.NewNop()
	}
	var rec session.Recorder = session.NopRecorder{}
	if len(recorders) > 0 {
		rec = session.Recorders(recorders)
	}
	return &Factory{
		cfg:      cfg,
		corpora:  corpora,
		recorder: rec,
		log:      log,
		buffer:   1024,
		debug:    matcher.NewEngine(corpora, log),
	}
}

// Open starts a conversation. Its corpus is pinned now, or on first use if
// nothing is loaded yet.
func (f *Factory) Open() *Conversation {
	id := string(session.NewID())
	pinned := matcher.Pin(f.corpora)
	pinned.Corpus()

	stream := surface.NewStream(f.buffer)
	ctrl := session.NewController(f.cfg, stream.Emitter(),
		matcher.NewEngine(pinned, f.log),
		session.WithRecorder(f.recorder),
		session.WithLogger(f.log),
		session.WithPage(id))
	f.log.Debug("conversation opened", zap.String("page", id))
	return &Conversation{ID: id, ctrl: ctrl, stream: stream}
}

// Match resolves prompt against the live corpus without a conversation.
func (f *Factory) Match(ctx context.Context, prompt string) (matcher.Outcome, error) {
	return f.debug.Resolve(ctx, prompt)
}

// #endregion factory

// #region conversation
// Conversation is one page: a controller and the stream of its surface
// events.
type Conversation struct {
	ID     string
	ctrl   *session.Controller
	stream *surface.Stream
	once   sync.Once
}

// Dispatch applies an inbound command.
func (c *Conversation) Dispatch(cmd surface.Command) error {
	switch cmd.Op {
	case surface.OpSubmit:
		c.ctrl.Submit(cmd.Prompt)
	case surface.OpRetry:
		c.ctrl.Retry()
	default:
		return fmt.Errorf("unknown op %q", cmd.Op)
	}
	return nil
}

// Submit forwards to the controller.
func (c *Conversation) Submit(prompt string) *session.Session { return c.ctrl.Submit(prompt) }

// Retry forwards to the controller.
func (c *Conversation) Retry() *session.Session { return c.ctrl.Retry() }

// Busy forwards to the controller.
func (c *Conversation) Busy() bool { return c.ctrl.Busy() }

// Events streams the conversation's surface events.
func (c *Conversation) Events() <-chan surface.Event { return c.stream.Events() }

// Done is closed when the conversation's stream closes.
func (c *Conversation) Done() <-chan struct{} { return c.stream.Done() }

// Close stops the controller and then the stream.
func (c *Conversation) Close() {
	c.once.Do(func() {
		c.ctrl.Close()
		c.stream.Close()
	})
}

// #endregion conversation
