package output

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitbeard/vault-kube-token/internal/errs"
)

type doc struct {
	Token string `json:"token"`
}

func TestWriteToStdout(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(Stdout, &buf)

	require.NoError(t, sink.Write(doc{Token: "abc"}))
	assert.JSONEq(t, `{"token":"abc"}`, buf.String())
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
}

func TestWriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	sink := NewSink(path, nil)

	require.NoError(t, sink.Write(doc{Token: "abc"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"abc"}`, string(raw))
}

func TestWriteOverwritesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer"), 0o600))

	sink := NewSink(path, nil)
	require.NoError(t, sink.Write(doc{Token: "abc"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"abc"}`, string(raw))
}

func TestWriteDoesNotCreateDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "credentials.json")
	sink := NewSink(path, nil)

	err := sink.Write(doc{Token: "abc"})
	require.Error(t, err)

	var outErr *errs.OutputError
	require.True(t, errors.As(err, &outErr))
	assert.NoFileExists(t, path)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestWriteReportsStdoutFailure(t *testing.T) {
	sink := NewSink(Stdout, failingWriter{})

	err := sink.Write(doc{Token: "abc"})
	require.Error(t, err)

	var outErr *errs.OutputError
	require.True(t, errors.As(err, &outErr))
}
