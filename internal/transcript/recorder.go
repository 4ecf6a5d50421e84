package transcript

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/scenechat/internal/session"
)

// #region recorder
// Recorder appends a row for every finished session attempt. Write failures
// are logged and otherwise ignored; the conversation never waits on them
// for longer than the write timeout.
type Recorder struct {
	store   *Store
	log     *zap.Logger
	timeout time.Duration
}

var _ session.Recorder = (*Recorder)(nil)

// NewRecorder wraps store.
func NewRecorder(store *Store, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{store: store, log: log.Named("transcript"), timeout: 2 * time.Second}
}

func (r *Recorder) Started(session.Report) {}

func (r *Recorder) Dropped(string, string) {}

func (r *Recorder) Finished(rep session.Report) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if _, err := r.store.Append(ctx, FromReport(rep)); err != nil {
		r.log.Warn("session log write failed", zap.String("session", string(rep.SessionID)), zap.Error(err))
	}
}

// FromReport flattens a session report into a row.
func FromReport(rep session.Report) Entry {
	e := Entry{
		PageID:        rep.Page,
		SessionID:     string(rep.SessionID),
		Attempt:       rep.Attempt,
		Prompt:        rep.Prompt,
		Outcome:       rep.Result(),
		Output:        rep.Output,
		MatchDuration: rep.MatchDuration,
		StartedAt:     rep.StartedAt,
		FinishedAt:    rep.FinishedAt,
	}
	if rep.Err != nil {
		e.Error = rep.Err.Error()
		return e
	}
	e.Stage = string(rep.Outcome.Stage)
	e.MatchedID = rep.Outcome.MatchedID()
	e.PairedID = rep.Outcome.PairedID()
	e.CorpusVersion = rep.Outcome.CorpusVersion
	return e
}

// #endregion recorder
