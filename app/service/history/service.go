package history

import (
	"sync"
	"time"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
)

// conversationSize bounds every per-sender window; an append beyond it
// evicts the oldest entry.
const conversationSize = 5

type conversation struct {
	entries []Entry
}

func (c *conversation) add(role Role, content string) {
	entry := Entry{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}

	if len(c.entries) >= conversationSize {
		c.entries = append(c.entries[1:], entry)
	} else {
		c.entries = append(c.entries, entry)
	}
}

// Service owns every conversation window. Conversations are created lazily
// on first append and live until process exit.
type Service struct {
	mu            sync.RWMutex
	conversations map[string]*conversation
}

func New(_ *do.Injector) (*Service, error) {
	return &Service{
		conversations: make(map[string]*conversation),
	}, nil
}

func (s *Service) Append(senderID, content string, role Role) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[senderID]
	if !ok {
		conv = &conversation{}
		s.conversations[senderID] = conv
	}

	conv.add(role, content)
}

// LatestPair returns the most recent user and assistant turns for a sender.
// It reports false unless both roles are present: a sender that only ever
// asked (or never wrote at all) yields no context.
func (s *Service) LatestPair(senderID string) (Pair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[senderID]
	if !ok {
		return Pair{}, false
	}

	reversed := pie.Reverse(conv.entries)

	userIdx := pie.FindFirstUsing(reversed, func(e Entry) bool {
		return e.Role == RoleUser
	})
	assistantIdx := pie.FindFirstUsing(reversed, func(e Entry) bool {
		return e.Role == RoleAssistant
	})

	if userIdx < 0 || assistantIdx < 0 {
		return Pair{}, false
	}

	return Pair{
		LastUser:      reversed[userIdx].Content,
		LastAssistant: reversed[assistantIdx].Content,
	}, true
}

// Entries returns a copy of a sender's conversation window, oldest first.
func (s *Service) Entries(senderID string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[senderID]
	if !ok {
		return nil
	}

	result := make([]Entry, len(conv.entries))
	copy(result, conv.entries)

	return result
}
