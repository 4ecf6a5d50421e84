package corpus

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// #region scene
// Scene is one authored unit of the demo script. Odd ids are prompts and the
// following even id is their reply; the pairing is numeric and never stored.
type Scene struct {
	ID           int      `json:"id"`
	OnScreenText string   `json:"onScreenText,omitempty"`
	Dialogue     Dialogue `json:"dialogue,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`

	// NormalizedKeywords is derived once when the scene enters a Corpus.
	// nil means "not computed"; an empty slice means "no keywords".
	NormalizedKeywords []string `json:"-"`
}

// ErrMissingID is reported for records without an integer id.
var ErrMissingID = errors.New("scene has no integer id")

// sceneRecord is the lenient wire shape: text fields that are not strings
// read as empty and a non-array keywords value reads as missing.
type sceneRecord struct {
	ID           *int            `json:"id"`
	OnScreenText lenientString   `json:"onScreenText"`
	Dialogue     Dialogue        `json:"dialogue"`
	Notes        lenientString   `json:"notes"`
	Keywords     json.RawMessage `json:"keywords"`
}

// UnmarshalJSON decodes a scene record, tolerating loosely typed fields.
func (s *Scene) UnmarshalJSON(b []byte) error {
	var rec sceneRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return fmt.Errorf("decode scene: %w", err)
	}
	if rec.ID == nil {
		return ErrMissingID
	}
	*s = Scene{
		ID:           *rec.ID,
		OnScreenText: string(rec.OnScreenText),
		Dialogue:     rec.Dialogue,
		Notes:        string(rec.Notes),
		Keywords:     decodeKeywords(rec.Keywords),
	}
	return nil
}

// decodeKeywords keeps string entries and maps other entries to "", which
// normalization later drops. Anything but an array yields nil.
func decodeKeywords(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, len(items))
	for i, item := range items {
		var s string
		if json.Unmarshal(item, &s) == nil {
			out[i] = s
		}
	}
	return out
}

// #endregion scene

// #region dialogue
// Dialogue is either a plain line (Text) or a user/gpt exchange.
type Dialogue struct {
	Text string
	User string
	GPT  string
}

// IsZero reports whether no dialogue was authored.
func (d Dialogue) IsZero() bool {
	return d.Text == "" && d.User == "" && d.GPT == ""
}

// UnmarshalJSON accepts a string or an object with user/gpt fields. Other
// shapes decode as an empty dialogue.
func (d *Dialogue) UnmarshalJSON(b []byte) error {
	*d = Dialogue{}
	var line string
	if err := json.Unmarshal(b, &line); err == nil {
		d.Text = line
		return nil
	}
	var pair struct {
		User lenientString `json:"user"`
		GPT  lenientString `json:"gpt"`
	}
	if err := json.Unmarshal(b, &pair); err == nil {
		d.User = string(pair.User)
		d.GPT = string(pair.GPT)
	}
	return nil
}

// MarshalJSON writes the object form when either side of the exchange is set.
func (d Dialogue) MarshalJSON() ([]byte, error) {
	if d.User != "" || d.GPT != "" {
		return json.Marshal(struct {
			User string `json:"user,omitempty"`
			GPT  string `json:"gpt,omitempty"`
		}{d.User, d.GPT})
	}
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Text)
}

// #endregion dialogue

// #region lenient-string
type lenientString string

func (l *lenientString) UnmarshalJSON(b []byte) error {
	var s string
	if json.Unmarshal(b, &s) == nil {
		*l = lenientString(s)
	}
	return nil
}

// #endregion lenient-string
