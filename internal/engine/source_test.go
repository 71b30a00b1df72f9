package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/screenplan/internal/codec"
	"github.com/jmylchreest/screenplan/internal/valid"
)

func TestSourceFromStdin(t *testing.T) {
	stdin := strings.NewReader(`[[{"uuid": "abcdef"}]]`)
	source, err := NewSource(codec.JSON, stdin, false, "")
	require.NoError(t, err)

	groups, err := source.Groups()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"abcdef"}, groups[0].UUIDs)

	// The stream was consumed once; repeated calls replay it.
	groups, err = source.Groups()
	require.NoError(t, err)
	assert.Len(t, groups, 1)
}

func TestSourceTerminalStdinIsEmpty(t *testing.T) {
	// A terminal stdin must not be read at all.
	source, err := NewSource(codec.JSON, nil, true, "")
	require.NoError(t, err)

	groups, err := source.Groups()
	require.NoError(t, err)
	assert.Nil(t, groups)
}

func TestSourceEmptyStdin(t *testing.T) {
	source, err := NewSource(codec.JSON, strings.NewReader(""), false, "")
	require.NoError(t, err)

	groups, err := source.Groups()
	require.NoError(t, err)
	assert.Nil(t, groups)
}

func TestSourceReloadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, []byte(`[[{"uuid": "first"}]]`), 0o644))

	source, err := NewSource(codec.JSON, nil, true, path)
	require.NoError(t, err)
	assert.Equal(t, path, source.Path())

	groups, err := source.Groups()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"first"}, groups[0].UUIDs)

	require.NoError(t, os.WriteFile(path, []byte(`[[{"uuid": "second"}]]`), 0o644))

	groups, err = source.Groups()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"second"}, groups[0].UUIDs)
}

func TestSourceMissingFileFailsFast(t *testing.T) {
	_, err := NewSource(codec.JSON, nil, true, filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorContains(t, err, "input file")
}

func TestSourceYAML(t *testing.T) {
	stdin := strings.NewReader("- - uuid: abcdef\n    rotation: 90\n")
	source, err := NewSource(codec.YAML, stdin, false, "")
	require.NoError(t, err)

	groups, err := source.Groups()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.NotNil(t, groups[0].Configs["abcdef"].Rotation)
}

func TestSourceInvalidInputSurfacesValidation(t *testing.T) {
	stdin := strings.NewReader(`[[{"uuid": "a"}, {"uuid": "a"}]]`)
	source, err := NewSource(codec.JSON, stdin, false, "")
	require.NoError(t, err)

	_, err = source.Groups()
	var dup *valid.DuplicateDisplaysError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, []string{"a"}, dup.UUIDs)
}
