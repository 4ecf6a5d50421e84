package matcher

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/scenechat/internal/corpus"
)

// ErrCorpusUnavailable is returned when no corpus has been loaded yet.
var ErrCorpusUnavailable = errors.New("scene corpus not loaded")

// #region provider
// CorpusProvider hands out the corpus a resolution should run against.
type CorpusProvider interface {
	Corpus() *corpus.Corpus
}

// Fixed always provides the same corpus.
func Fixed(c *corpus.Corpus) CorpusProvider { return fixed{c} }

type fixed struct{ c *corpus.Corpus }

func (f fixed) Corpus() *corpus.Corpus { return f.c }

// Pin wraps p so that the first non-nil corpus it yields is kept for good.
// Pages use it so that a reload never changes the corpus under a running
// conversation.
func Pin(p CorpusProvider) CorpusProvider { return &pinned{src: p} }

type pinned struct {
	src CorpusProvider
	got atomic.Pointer[corpus.Corpus]
}

func (p *pinned) Corpus() *corpus.Corpus {
	if c := p.got.Load(); c != nil {
		return c
	}
	c := p.src.Corpus()
	if c == nil {
		return nil
	}
	if !p.got.CompareAndSwap(nil, c) {
		return p.got.Load()
	}
	return c
}

// #endregion provider

// #region engine
// Engine resolves prompts against the corpus of a provider.
type Engine struct {
	corpora CorpusProvider
	log     *zap.Logger
	tracer  trace.Tracer
}

// NewEngine creates an Engine. A nil logger discards output.
func NewEngine(p CorpusProvider, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		corpora: p,
		log:     log.Named("matcher"),
		tracer:  otel.Tracer("github.com/danielpatrickdp/scenechat/internal/matcher"),
	}
}

// Resolve matches prompt against the provider's current corpus. The only
// error is ErrCorpusUnavailable; unmatched and unpaired prompts are normal
// outcomes.
func (e *Engine) Resolve(ctx context.Context, prompt string) (Outcome, error) {
	_, span := e.tracer.Start(ctx, "matcher.Resolve")
	defer span.End()

	c := e.corpora.Corpus()
	if c == nil {
		span.SetStatus(codes.Error, ErrCorpusUnavailable.Error())
		return Outcome{}, ErrCorpusUnavailable
	}

	start := time.Now()
	out := Resolve(c, prompt)
	span.SetAttributes(
		attribute.String("match.outcome", string(out.Kind)),
		attribute.String("match.stage", string(out.Stage)),
		attribute.Int("match.score", out.Score),
		attribute.Int("match.scene_id", out.MatchedID()),
		attribute.String("corpus.version", out.CorpusVersion),
	)
	e.log.Debug("resolved",
		zap.String("outcome", string(out.Kind)),
		zap.String("reason", out.Reason),
		zap.Duration("took", time.Since(start)))
	return out, nil
}

// #endregion engine
