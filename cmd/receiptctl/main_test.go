package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/receipt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHashFromStdin(t *testing.T) {
	out, err := run(t, "data:image/png;base64,abc123==\n", "hash", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "hash: "+receipt.Hash("abc123=="))
	assert.Contains(t, out, "bytes: 4")
}

func TestHashFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipt.b64")
	require.NoError(t, os.WriteFile(path, []byte("aaaa"), 0o600))

	out, err := run(t, "", "hash", path)
	require.NoError(t, err)
	assert.Contains(t, out, "hash: "+receipt.Hash("aaaa"))
	assert.Contains(t, out, "bytes: 3")
}

func TestHashEmptyInput(t *testing.T) {
	_, err := run(t, "  ", "hash", "-")
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	out, err := run(t, "", "fingerprint", "--store", "Lowe's #204", "--amount", "49.99", "--date", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "lowes_204_49.99_20240301\n", out)
}

func TestFingerprintRejectsBadDate(t *testing.T) {
	_, err := run(t, "", "fingerprint", "--store", "Home Depot", "--amount", "10", "--date", "March 1st")
	assert.Error(t, err)
}

func TestMigrateDownValidatesSteps(t *testing.T) {
	_, err := run(t, "", "migrate", "down", "--steps", "0")
	assert.ErrorContains(t, err, "steps must be at least 1")
}
