package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"deadline", context.DeadlineExceeded, ErrBackendTimeout},
		{"wrapped deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), ErrBackendTimeout},
		{"status", &StatusError{Backend: "openrouter", Status: 502}, ErrBackendUnavailable},
		{"plain", errors.New("connection refused"), ErrBackendUnavailable},
		{"already classified", ErrBackendTimeout, ErrBackendTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Classify(tt.err), tt.want)
		})
	}

	assert.NoError(t, Classify(nil))
}

func TestStatusErrorIsUnavailable(t *testing.T) {
	err := &StatusError{Backend: "ollama", Status: 404, Body: "model not found"}
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Contains(t, err.Error(), "404")
}
