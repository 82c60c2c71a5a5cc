package cli

import (
	"errors"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("server.listen_address", "missing required field")

	expected := "config error in server.listen_address: missing required field"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestCommandError(t *testing.T) {
	underlying := errors.New("listen tcp: address in use")
	err := NewCommandError("run", underlying)

	expected := "command run failed: listen tcp: address in use"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}

	if !errors.Is(err, underlying) {
		t.Error("errors.Is must reach the wrapped error")
	}
}
