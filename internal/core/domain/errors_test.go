package domain

import (
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedField", ErrUnsupportedField},
		{"ErrBackendDisabled", ErrBackendDisabled},
		{"ErrBackendClosed", ErrBackendClosed},
		{"ErrNoBackends", ErrNoBackends},
		{"ErrConfig", ErrConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestDomainErrors_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("lookup jdoe: %w", ErrNotFound)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrInvalidInput))
}

func TestBackendError(t *testing.T) {
	cause := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	err := NewBackendError(BackendLDAP, "search", cause, true)

	assert.Equal(t, "ldap: search [transient]: dial tcp: connection refused", err.Error())
	assert.True(t, errors.Is(err, cause))

	var opErr *net.OpError
	assert.True(t, errors.As(err, &opErr))
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"transient", NewBackendError(BackendLDAP, "bind", errors.New("timeout"), true), true},
		{"permanent", NewBackendError(BackendWebdir, "fetch", errors.New("404"), false), false},
		{"wrapped transient", fmt.Errorf("attempt: %w", NewBackendError(BackendLDAP, "search", errors.New("eof"), true)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTransient(tt.err))
		})
	}
}
