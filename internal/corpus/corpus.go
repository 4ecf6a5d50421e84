package corpus

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/danielpatrickdp/scenechat/internal/text"
)

// ErrInvalidShape is reported when the dataset has no "scenes" array.
var ErrInvalidShape = errors.New(`dataset: "scenes" must be an array`)

// #region corpus
// Corpus is the ordered, pre-indexed scene collection. It is immutable once
// built and safe to share between goroutines.
type Corpus struct {
	scenes  []*Scene
	byID    map[int]*Scene
	version string
}

// Empty returns a corpus with no scenes. Matching against it always yields
// no match.
func Empty() *Corpus {
	return &Corpus{byID: map[int]*Scene{}}
}

// New indexes scenes in the given order and derives NormalizedKeywords for
// each one. The first scene wins when ids repeat.
func New(scenes []*Scene) *Corpus {
	c := &Corpus{
		scenes: make([]*Scene, 0, len(scenes)),
		byID:   make(map[int]*Scene, len(scenes)),
	}
	for _, s := range scenes {
		if s == nil {
			continue
		}
		s.NormalizedKeywords = text.NormalizeAll(s.Keywords)
		c.scenes = append(c.scenes, s)
		if _, dup := c.byID[s.ID]; !dup {
			c.byID[s.ID] = s
		}
	}
	return c
}

// Scenes returns the scenes in corpus order. Callers must not modify them.
func (c *Corpus) Scenes() []*Scene { return c.scenes }

// Len returns the number of scenes.
func (c *Corpus) Len() int { return len(c.scenes) }

// ByID looks up a scene by id.
func (c *Corpus) ByID(id int) (*Scene, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Version is a short content hash of the dataset the corpus was parsed
// from, or "" for corpora built in code.
func (c *Corpus) Version() string { return c.version }

// #endregion corpus

// #region parse
// Parse builds a corpus from a raw dataset document. It never returns a nil
// corpus: an unparseable document or a missing "scenes" array yields the
// empty corpus together with a diagnostic error. Individual records that
// cannot be decoded are skipped and reported in the same diagnostic.
func Parse(data []byte) (*Corpus, error) {
	var doc struct {
		Scenes json.RawMessage `json:"scenes"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Empty(), fmt.Errorf("parse dataset: %w", err)
	}
	raw := bytes.TrimSpace(doc.Scenes)
	if len(raw) == 0 || raw[0] != '[' {
		return Empty(), ErrInvalidShape
	}
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return Empty(), fmt.Errorf("parse scenes: %w", err)
	}

	scenes := make([]*Scene, 0, len(records))
	var skipped []error
	for i, rec := range records {
		var s Scene
		if err := json.Unmarshal(rec, &s); err != nil {
			skipped = append(skipped, fmt.Errorf("scene #%d skipped: %w", i, err))
			continue
		}
		scenes = append(scenes, &s)
	}

	c := New(scenes)
	c.version = digest(data)
	return c, errors.Join(skipped...)
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:6])
}

// #endregion parse
