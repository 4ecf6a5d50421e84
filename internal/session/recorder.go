package session

import (
	"time"

	"github.com/danielpatrickdp/scenechat/internal/matcher"
)

// #region report
// Report describes one session attempt.
type Report struct {
	Page          string
	SessionID     ID
	Attempt       int
	Prompt        string
	Outcome       matcher.Outcome
	Output        string
	Err           error
	StartedAt     time.Time
	FinishedAt    time.Time
	MatchDuration time.Duration
}

// Result is the outcome kind, or "error" for a faulted attempt.
func (r Report) Result() string {
	if r.Err != nil {
		return "error"
	}
	return string(r.Outcome.Kind)
}

// Retry reports whether the attempt re-ran a failed session.
func (r Report) Retry() bool { return r.Attempt > 1 }

// #endregion report

// #region recorder
// Recorder observes session attempts. Calls come from session goroutines.
type Recorder interface {
	Started(r Report)
	Finished(r Report)
	Dropped(page, prompt string)
}

// NopRecorder ignores everything.
type NopRecorder struct{}

func (NopRecorder) Started(Report)         {}
func (NopRecorder) Finished(Report)        {}
func (NopRecorder) Dropped(string, string) {}

// Recorders fans out to several recorders in order.
type Recorders []Recorder

func (rs Recorders) Started(r Report) {
	for _, rec := range rs {
		rec.Started(r)
	}
}

func (rs Recorders) Finished(r Report) {
	for _, rec := range rs {
		rec.Finished(r)
	}
}

func (rs Recorders) Dropped(page, prompt string) {
	for _, rec := range rs {
		rec.Dropped(page, prompt)
	}
}

// #endregion recorder
