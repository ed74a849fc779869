// Package output writes the final credential document to its sink. stdout is
// reserved for the document itself so kubectl never parses a diagnostic as a
// credential; everything else this program prints goes to stderr.
package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/fitbeard/vault-kube-token/internal/errs"
)

// Stdout is the sink path meaning standard output.
const Stdout = "-"

// Sink is one write destination for a credential document.
type Sink struct {
	path   string
	stdout io.Writer
}

// NewSink returns a sink for path; Stdout selects the given writer instead of
// a file.
func NewSink(path string, stdout io.Writer) Sink {
	return Sink{path: path, stdout: stdout}
}

// Write renders doc as indented JSON and writes it in one pass. The document
// is fully serialized before the sink is opened, so a marshalling failure
// leaves no partial output behind. Files are created or truncated; missing
// parent directories are not created.
func (s Sink) Write(doc any) error {
	rendered, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errs.Output("encoding credential document: %v", err)
	}
	rendered = append(rendered, '\n')

	if s.path == Stdout || s.path == "" {
		if _, err := s.stdout.Write(rendered); err != nil {
			return errs.Output("writing credential document to stdout: %v", err)
		}
		return nil
	}

	f, err := os.Create(s.path)
	if err != nil {
		return errs.Output("opening %q: %v", s.path, err)
	}
	if _, err := f.Write(rendered); err != nil {
		f.Close()
		return errs.Output("writing %q: %v", s.path, err)
	}
	if err := f.Close(); err != nil {
		return errs.Output("closing %q: %v", s.path, err)
	}
	return nil
}
