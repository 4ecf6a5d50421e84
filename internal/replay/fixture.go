package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danielpatrickdp/scenechat/internal/corpus"
	"github.com/danielpatrickdp/scenechat/internal/matcher"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: a dataset and
// the prompts to resolve against it.
type Fixture struct {
	Description string `json:"description"`
	// Dataset is an inline dataset document ({"scenes": [...]}).
	Dataset json.RawMessage `json:"dataset,omitempty"`
	// DatasetPath points at a dataset file, relative to the fixture. Used
	// only when Dataset is empty.
	DatasetPath string        `json:"dataset_path,omitempty"`
	Cases       []FixtureCase `json:"cases"`

	dir string
}

// FixtureCase is one prompt and what resolving it should produce.
type FixtureCase struct {
	Name   string      `json:"name"`
	Prompt string      `json:"prompt"`
	Expect Expectation `json:"expect"`
}

// Expectation lists the checked fields of an outcome. Zero-valued fields
// other than Outcome are not checked.
type Expectation struct {
	Outcome matcher.Kind  `json:"outcome"`
	Stage   matcher.Stage `json:"stage,omitempty"`
	SceneID int           `json:"scene_id,omitempty"`
	ReplyID int           `json:"reply_id,omitempty"`
	Reply   string        `json:"reply,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(f.Dataset) == 0 && f.DatasetPath == "" {
		return nil, fmt.Errorf("fixture %s: no dataset", path)
	}
	f.dir = filepath.Dir(path)
	return &f, nil
}

// Corpus parses the fixture's dataset. Skipped records are not an error
// here; the fixture's expectations decide whether they mattered.
func (f *Fixture) Corpus() (*corpus.Corpus, error) {
	data := []byte(f.Dataset)
	if len(data) == 0 {
		p := f.DatasetPath
		if !filepath.IsAbs(p) {
			p = filepath.Join(f.dir, p)
		}
		var err error
		if data, err = os.ReadFile(p); err != nil {
			return nil, fmt.Errorf("read dataset %s: %w", p, err)
		}
	}
	c, err := corpus.Parse(data)
	if c.Len() == 0 && err != nil {
		return nil, err
	}
	return c, nil
}

// #endregion fixture-loader
