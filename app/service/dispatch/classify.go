package dispatch

import "regexp"

// Transports deliver non-text content (media, documents, voice notes) as a
// sentinel body instead of real text.
var unsupportedPattern = regexp.MustCompile(`^_event_(media|document|voice_note)_`)

func IsUnsupported(body string) bool {
	return unsupportedPattern.MatchString(body)
}
