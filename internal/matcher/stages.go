package matcher

import (
	"strings"

	"github.com/danielpatrickdp/scenechat/internal/corpus"
	"github.com/danielpatrickdp/scenechat/internal/text"
)

// #region best-match
// BestMatch scores every scene against the input's keyword set and returns
// the winner with its score. The scan runs left to right: a strictly greater
// score takes the lead, and an equal positive score takes it only when the
// later scene has a smaller id. A zero best score, or an input with no
// keywords, yields (nil, 0).
func BestMatch(c *corpus.Corpus, input string) (*corpus.Scene, int) {
	keys := text.ExtractKeywords(input)
	if len(keys) == 0 || c == nil {
		return nil, 0
	}

	var best *corpus.Scene
	bestScore := 0
	for _, s := range c.Scenes() {
		score := text.Overlap(keys, sceneKeywords(s))
		switch {
		case score > bestScore:
			best, bestScore = s, score
		case score == bestScore && score > 0 && s.ID < best.ID:
			best = s
		}
	}
	return best, bestScore
}

// sceneKeywords prefers the cached normalized keywords and only normalizes
// the raw ones for scenes that never went through a Corpus.
func sceneKeywords(s *corpus.Scene) []string {
	if s.NormalizedKeywords != nil {
		return s.NormalizedKeywords
	}
	return text.NormalizeAll(s.Keywords)
}

// #endregion best-match

// #region fallback
// FallbackMatch returns the first scene whose normalized text fields contain
// the normalized query, or whose raw keywords share a token with it. An
// empty raw query never matches. A query that normalizes to "" matches the
// first scene with any non-empty searched field.
func FallbackMatch(c *corpus.Corpus, input string) *corpus.Scene {
	if input == "" || c == nil {
		return nil
	}
	q := text.Normalize(input)
	tokens := strings.Fields(q)
	for _, s := range c.Scenes() {
		if fallbackHit(s, q, tokens) {
			return s
		}
	}
	return nil
}

func fallbackHit(s *corpus.Scene, q string, tokens []string) bool {
	fields := []string{s.OnScreenText, s.Dialogue.Text, s.Dialogue.User, s.Dialogue.GPT, s.Notes}
	for _, f := range fields {
		if f != "" && strings.Contains(text.Normalize(f), q) {
			return true
		}
	}
	// Raw keywords, normalized on the fly.
	return text.Overlap(tokens, text.NormalizeAll(s.Keywords)) > 0
}

// #endregion fallback

// #region pairing
// Paired returns the other half of s's odd/even pair, or nil when the corpus
// has no scene with that id.
func Paired(c *corpus.Corpus, s *corpus.Scene) *corpus.Scene {
	if c == nil || s == nil {
		return nil
	}
	other, ok := c.ByID(PairID(s.ID))
	if !ok {
		return nil
	}
	return other
}

// PairID is id+1 for odd ids and id-1 for even ids.
func PairID(id int) int {
	if id%2 != 0 {
		return id + 1
	}
	return id - 1
}

// #endregion pairing
