package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmdHasSubcommands(t *testing.T) {
	root := NewRootCmd()

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "add", "search", "list", "uploads", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestVersionCmd(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--short"})

	require.NoError(t, root.Execute())
	assert.NotEmpty(t, strings.TrimSpace(out.String()))
}

func TestVersionCmdJSON(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--json"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), `"version"`)
	assert.Contains(t, out.String(), `"go_version"`)
}

func TestReadContentFromArg(t *testing.T) {
	content, title, err := readContent([]string{"inline content"}, "", strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "inline content", content)
	assert.Empty(t, title)
}

func TestReadContentFromStdin(t *testing.T) {
	content, _, err := readContent(nil, "", strings.NewReader("piped content"))
	require.NoError(t, err)
	assert.Equal(t, "piped content", content)
}
