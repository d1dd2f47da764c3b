package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUnsupported(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"media placeholder", "_event_media_abcd", true},
		{"document placeholder", "_event_document_xyz", true},
		{"voice note placeholder", "_event_voice_note_123", true},
		{"plain text", "hello there", false},
		{"empty body", "", false},
		{"sentinel mid-string", "look at _event_media_abcd", false},
		{"unknown event kind", "_event_location_abcd", false},
		{"missing trailing underscore", "_event_media", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUnsupported(tt.body))
		})
	}
}
