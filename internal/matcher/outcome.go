package matcher

import (
	"fmt"

	"github.com/danielpatrickdp/scenechat/internal/corpus"
)

// #region kind
// Kind classifies a resolution. None of the kinds is an error.
type Kind string

const (
	KindResolved  Kind = "resolved"
	KindUnmatched Kind = "unmatched"
	KindUnpaired  Kind = "unpaired"
)

// Stage records which matching stage produced the scene.
type Stage string

const (
	StageNone     Stage = "none"
	StageKeywords Stage = "keywords"
	StageFallback Stage = "fallback"
)

// #endregion kind

// #region outcome
// Outcome is the result of matching one prompt against a corpus.
type Outcome struct {
	Kind    Kind
	Stage   Stage
	Score   int
	Matched *corpus.Scene
	Paired  *corpus.Scene
	// Reply is the paired scene's on-screen text when Kind is resolved.
	Reply         string
	Reason        string
	CorpusVersion string
}

// Resolve runs stage 1, then stage 2 only when stage 1 found nothing, then
// pairs and classifies the result.
func Resolve(c *corpus.Corpus, input string) Outcome {
	out := Outcome{Kind: KindUnmatched, Stage: StageNone}
	if c != nil {
		out.CorpusVersion = c.Version()
	}

	matched, score := BestMatch(c, input)
	if matched != nil {
		out.Stage, out.Score = StageKeywords, score
	} else if matched = FallbackMatch(c, input); matched != nil {
		out.Stage = StageFallback
	}
	if matched == nil {
		out.Reason = "no keyword or substring match"
		return out
	}
	out.Matched = matched

	paired := Paired(c, matched)
	if paired == nil {
		out.Kind = KindUnpaired
		out.Reason = fmt.Sprintf("%s: scene %d matched, scene %d absent", out.Stage, matched.ID, PairID(matched.ID))
		return out
	}
	out.Kind = KindResolved
	out.Paired = paired
	out.Reply = paired.OnScreenText
	out.Reason = fmt.Sprintf("%s: scene %d matched (score=%d), reply scene %d", out.Stage, matched.ID, score, paired.ID)
	return out
}

// MatchedID returns the matched scene id, or 0 when nothing matched.
func (o Outcome) MatchedID() int {
	if o.Matched == nil {
		return 0
	}
	return o.Matched.ID
}

// PairedID returns the reply scene id, or 0 when there is none.
func (o Outcome) PairedID() int {
	if o.Paired == nil {
		return 0
	}
	return o.Paired.ID
}

// #endregion outcome

// #region view
// View is the JSON shape of an Outcome for debug endpoints and tools.
type View struct {
	Outcome       Kind   `json:"outcome"`
	Stage         Stage  `json:"stage"`
	Score         int    `json:"score"`
	MatchedID     *int   `json:"matchedId,omitempty"`
	PairedID      *int   `json:"pairedId,omitempty"`
	Reply         string `json:"reply,omitempty"`
	Reason        string `json:"reason"`
	CorpusVersion string `json:"corpusVersion,omitempty"`
}

// View flattens o for encoding.
func (o Outcome) View() View {
	v := View{
		Outcome:       o.Kind,
		Stage:         o.Stage,
		Score:         o.Score,
		Reply:         o.Reply,
		Reason:        o.Reason,
		CorpusVersion: o.CorpusVersion,
	}
	if o.Matched != nil {
		id := o.Matched.ID
		v.MatchedID = &id
	}
	if o.Paired != nil {
		id := o.Paired.ID
		v.PairedID = &id
	}
	return v
}

// #endregion view
