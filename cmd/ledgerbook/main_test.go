package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/ledgerbook/ledgerbook/testing"
)

func TestStatementsCheck(t *testing.T) {
	cmd := newStatementsCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetArgs([]string{"check"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "ok: 3 statements, fiscal year starts in January")

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"statements": []}`), 0o600))
	cmd = newStatementsCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"check", path})
	assert.Error(t, cmd.Execute())
}

func TestServeSkipsInTestMode(t *testing.T) {
	cmd := newServeCmd()
	cmd.SetArgs(nil)
	assert.NoError(t, cmd.Execute())
}
