package errors_test

import (
	"errors"
	"testing"

	pkgerrors "github.com/agentstation/inferdelta/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "concept",
			ID:       "404684003",
		}
		assert.Equal(t, "concept with ID 404684003 not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("concept", "1")
		wrapped := errors.Join(errors.New("failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "output",
			Message: "cannot be empty",
		}
		assert.Equal(t, "validation failed for field output: cannot be empty", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "invalid configuration"}
		assert.Equal(t, "validation failed: invalid configuration", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("wraps effective date sentinel", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "output",
			Value:   "delta.txt",
			Message: "file name must contain an 8-digit date",
			Err:     pkgerrors.ErrNoEffectiveDate,
		}
		assert.True(t, errors.Is(err, pkgerrors.ErrNoEffectiveDate))
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("wrap helper", func(t *testing.T) {
		assert.Nil(t, pkgerrors.WrapValidation("identifiers", nil))
		err := pkgerrors.WrapValidation("identifiers", errors.New("unknown policy"))
		var vErr *pkgerrors.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "identifiers", vErr.Field)
	})
}

func TestConfigError(t *testing.T) {
	err := pkgerrors.NewConfigError("reconciler", "is-a type must be positive", nil)
	assert.Contains(t, err.Error(), "reconciler")
	assert.Contains(t, err.Error(), "is-a type must be positive")
	assert.Nil(t, err.Unwrap())
}

func TestIOError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.IOError{
			Operation: "read",
			Path:      "/tmp/stated.txt",
			Message:   "permission denied",
		}
		assert.Contains(t, err.Error(), "read")
		assert.Contains(t, err.Error(), "/tmp/stated.txt")
		assert.Contains(t, err.Error(), "permission denied")
	})

	t.Run("wrap helper", func(t *testing.T) {
		baseErr := errors.New("disk full")
		err := pkgerrors.WrapIO("write", "/data/delta_20250131.txt", baseErr)
		ioErr, ok := err.(*pkgerrors.IOError)
		require.True(t, ok)
		assert.Equal(t, "write", ioErr.Operation)
		assert.Equal(t, baseErr, ioErr.Unwrap())
		assert.Nil(t, pkgerrors.WrapIO("write", "x", nil))
	})
}

func TestParseError(t *testing.T) {
	t.Run("with file and line", func(t *testing.T) {
		err := &pkgerrors.ParseError{
			Format:  "rf2",
			File:    "stated.txt",
			Line:    10,
			Message: "expected 10 columns",
		}
		assert.Equal(t, "parse error in rf2 at stated.txt:10: expected 10 columns", err.Error())
	})

	t.Run("with file and position", func(t *testing.T) {
		err := &pkgerrors.ParseError{Format: "rf2", File: "stated.txt", Line: 3, Column: 5, Message: "bad id"}
		assert.Contains(t, err.Error(), "3:5")
	})

	t.Run("format only", func(t *testing.T) {
		err := &pkgerrors.ParseError{Format: "yaml", Message: "syntax error"}
		assert.Equal(t, "yaml parse error: syntax error", err.Error())
	})

	t.Run("wrap helper", func(t *testing.T) {
		baseErr := errors.New("EOF")
		wrapped := pkgerrors.WrapParse("rf2", "inferred.txt", baseErr)
		parseErr, ok := wrapped.(*pkgerrors.ParseError)
		require.True(t, ok)
		assert.Equal(t, "inferred.txt", parseErr.File)
		assert.ErrorIs(t, wrapped, baseErr)
	})
}

func TestResourceError(t *testing.T) {
	err := pkgerrors.WrapResource("load", "snapshot", "stated", errors.New("timeout"))
	resErr, ok := err.(*pkgerrors.ResourceError)
	require.True(t, ok)
	assert.Equal(t, "failed to load snapshot stated: timeout", resErr.Error())

	noID := pkgerrors.NewResourceError("write", "delta", "", errors.New("closed"))
	assert.Equal(t, "failed to write delta: closed", noID.Error())
}

func TestStateError(t *testing.T) {
	err := pkgerrors.NewStateError("100 -50-> 200 [1]", "current", "suppressed")
	assert.Equal(t, "relationship 100 -50-> 200 [1] cannot move from current to suppressed", err.Error())
	assert.True(t, pkgerrors.IsInvalidTransition(err))
	assert.False(t, pkgerrors.IsValidationError(err))
}

func TestContradictionError(t *testing.T) {
	err := pkgerrors.NewContradictionError([]string{"a", "b"})
	assert.Equal(t, "delta activates and inactivates 2 relationship(s): a, b", err.Error())
	assert.True(t, pkgerrors.IsContradiction(err))
}
