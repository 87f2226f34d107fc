package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lyzr/sequencer/internal/errs"
	"github.com/lyzr/sequencer/internal/procedure"
)

// FileLoader implements procedure.DocLoader against the local
// filesystem: Load reads a path relative to a configured root
// directory (so Include attributes stay relative, not absolute), and
// Decode accepts either JSON or YAML and sniffs which one it got.
type FileLoader struct {
	// Root is prepended to every Load path that isn't already
	// absolute. Empty means paths are resolved relative to the
	// process's working directory.
	Root string
}

// NewFileLoader builds a FileLoader rooted at dir.
func NewFileLoader(dir string) *FileLoader {
	return &FileLoader{Root: dir}
}

func (l *FileLoader) resolve(path string) string {
	if l.Root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.Root, path)
}

// Load reads the raw bytes of the procedure file at path.
func (l *FileLoader) Load(path string) ([]byte, error) {
	raw, err := os.ReadFile(l.resolve(path))
	if err != nil {
		return nil, errs.Wrap(errs.KindParse, fmt.Sprintf("load procedure file %q", path), err)
	}
	return raw, nil
}

// Decode parses raw as a procedure document, trying JSON first (since
// a JSON document is also valid to feed a YAML decoder but not vice
// versa, a content sniff on the first non-whitespace byte is cheaper
// and unambiguous) and falling back to YAML.
func (l *FileLoader) Decode(raw []byte) (procedure.Doc, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return decodeJSON(raw)
	}
	return decodeYAML(raw)
}

func decodeJSON(raw []byte) (procedure.Doc, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var wd wireDoc
	if err := dec.Decode(&wd); err != nil {
		return procedure.Doc{}, errs.Wrap(errs.KindParse, "decode JSON procedure document", err)
	}
	return wd.toDoc(), nil
}

func decodeYAML(raw []byte) (procedure.Doc, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var wd wireDoc
	if err := dec.Decode(&wd); err != nil {
		return procedure.Doc{}, errs.Wrap(errs.KindParse, "decode YAML procedure document", err)
	}
	return wd.toDoc(), nil
}
