package replay

import (
	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/scenechat/internal/corpus"
	"github.com/danielpatrickdp/scenechat/internal/matcher"
)

// #region types
// Result captures the outcome of replaying one case.
type Result struct {
	Name   string
	Prompt string
	Passed bool
	// Diff is empty when the case passed, otherwise a (-want +got) diff of
	// the checked fields.
	Diff    string
	Outcome matcher.Outcome
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	Total      int
	Passed     int
	Failed     int
	Resolved   int
	Unmatched  int
	Unpaired   int
	ByFallback int
}

// OK reports whether every case passed.
func (s Summary) OK() bool { return s.Failed == 0 }

// #endregion types

// #region replay
// Replay resolves every case against c. Operates entirely in-memory.
func Replay(c *corpus.Corpus, cases []FixtureCase) []Result {
	results := make([]Result, 0, len(cases))
	for _, tc := range cases {
		out := matcher.Resolve(c, tc.Prompt)
		got := observed(tc.Expect, out)
		diff := cmp.Diff(tc.Expect, got)
		results = append(results, Result{
			Name:    tc.Name,
			Prompt:  tc.Prompt,
			Passed:  diff == "",
			Diff:    diff,
			Outcome: out,
		})
	}
	return results
}

// observed projects out onto the fields want checks.
func observed(want Expectation, out matcher.Outcome) Expectation {
	got := Expectation{Outcome: out.Kind}
	if want.Stage != "" {
		got.Stage = out.Stage
	}
	if want.SceneID != 0 {
		got.SceneID = out.MatchedID()
	}
	if want.ReplyID != 0 {
		got.ReplyID = out.PairedID()
	}
	if want.Reply != "" {
		got.Reply = out.Reply
	}
	return got
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
		switch r.Outcome.Kind {
		case matcher.KindResolved:
			s.Resolved++
		case matcher.KindUnmatched:
			s.Unmatched++
		case matcher.KindUnpaired:
			s.Unpaired++
		}
		if r.Outcome.Stage == matcher.StageFallback {
			s.ByFallback++
		}
	}
	return s
}

// Run loads the fixture's corpus and replays its cases.
func Run(f *Fixture) ([]Result, Summary, error) {
	c, err := f.Corpus()
	if err != nil {
		return nil, Summary{}, err
	}
	results := Replay(c, f.Cases)
	return results, Summarize(results), nil
}

// #endregion replay
