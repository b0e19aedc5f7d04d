package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"missing url", Options{OutputPath: "/tmp/x.png", Width: 10, Height: 10}},
		{"missing output", Options{URL: "http://x", Width: 10, Height: 10}},
		{"zero viewport", Options{URL: "http://x", OutputPath: "/tmp/x.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, CapturePNG(context.Background(), tt.opts))
		})
	}
}

func TestOptionsDefaultTimeout(t *testing.T) {
	o := Options{URL: "http://x", OutputPath: "/tmp/x.png", Width: 184, Height: 224}
	require.NoError(t, o.validate())
	assert.Equal(t, DefaultTimeout, o.Timeout)

	o.Timeout = time.Second
	require.NoError(t, o.validate())
	assert.Equal(t, time.Second, o.Timeout)
}
