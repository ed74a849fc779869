package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoriesWrapAndUnwrap(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name   string
		err    error
		prefix string
		as     func(error) bool
	}{
		{
			name:   "configuration",
			err:    &ConfigurationError{Err: cause},
			prefix: "configuration error: ",
			as: func(err error) bool {
				var target *ConfigurationError
				return errors.As(err, &target)
			},
		},
		{
			name:   "credential",
			err:    &CredentialError{Err: cause},
			prefix: "credential error: ",
			as: func(err error) bool {
				var target *CredentialError
				return errors.As(err, &target)
			},
		},
		{
			name:   "output",
			err:    &OutputError{Err: cause},
			prefix: "output error: ",
			as: func(err error) bool {
				var target *OutputError
				return errors.As(err, &target)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.prefix+"boom", tt.err.Error())
			assert.True(t, tt.as(tt.err))
			assert.True(t, tt.as(fmt.Errorf("wrapped: %w", tt.err)))
			assert.True(t, errors.Is(tt.err, cause))
		})
	}
}

func TestConstructors(t *testing.T) {
	err := Configuration("missing %s", "cluster")
	require.EqualError(t, err, "configuration error: missing cluster")

	err = Credential("no %s field", "access_key")
	require.EqualError(t, err, "credential error: no access_key field")

	err = Output("cannot write %q", "/tmp/x")
	require.EqualError(t, err, `output error: cannot write "/tmp/x"`)
}
