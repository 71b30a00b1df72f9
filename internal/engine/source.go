package engine

import (
	"fmt"
	"io"
	"os"

	"github.com/jmylchreest/screenplan/internal/codec"
	"github.com/jmylchreest/screenplan/internal/model"
	"github.com/jmylchreest/screenplan/internal/valid"
)

// Source abstracts where the desired configuration comes from. When backed
// by a file path it re-reads the file on every Groups call, which is what
// lets daemon mode pick up edits without a restart. When backed by standard
// input the stream is consumed once up front and replayed; a terminal stdin
// is treated as empty rather than blocking on a read that will never come.
type Source struct {
	format codec.Format
	path   string
	data   []byte
}

// NewSource creates a Source from an optional input path and the process
// stdin. stdinIsTerminal should report whether stdin is an interactive
// terminal rather than a pipe or redirect.
func NewSource(format codec.Format, stdin io.Reader, stdinIsTerminal bool, path string) (*Source, error) {
	s := &Source{format: format, path: path}
	if path != "" {
		// Reload happens per Groups call; verify the file is readable now so
		// a bad --input flag fails fast.
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("input file: %w", err)
		}
		return s, nil
	}
	if stdinIsTerminal {
		return s, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("reading standard input: %w", err)
	}
	s.data = data
	return s, nil
}

// Groups parses and validates the current desired configuration. An empty
// source yields no groups and no error; callers decide whether that is
// acceptable for their mode.
func (s *Source) Groups() ([]valid.Group, error) {
	data := s.data
	if s.path != "" {
		var err error
		data, err = os.ReadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("reloading input file: %w", err)
		}
	}
	if len(data) == 0 {
		return nil, nil
	}

	var cgs model.ConfigGroups
	if err := codec.Decode(s.format, data, &cgs); err != nil {
		return nil, err
	}
	return valid.Validate(cgs)
}

// Path returns the file path backing this source, or empty when reading
// from standard input.
func (s *Source) Path() string {
	return s.path
}
