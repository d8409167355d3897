// Package dummymail provides a synchronous EmailService for tests: messages
// are rendered and recorded, never sent.
package dummymail

import (
	"sync"

	"github.com/planacad/backend/core"
)

type Service struct {
	mu   sync.Mutex
	sent []core.EmailMessage
}

var _ core.EmailService = (*Service)(nil)

func NewService() *Service {
	return &Service{}
}

func (svc *Service) SendMessages(messages ...*core.EmailMessage) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, msg := range messages {
		_ = msg.Render()
		if msg.HasRecipients() && (msg.HasContent() || msg.HasAttachments() || msg.TemplateName != "") {
			svc.sent = append(svc.sent, *msg)
		}
	}
}

// SentMessages returns a copy of everything recorded so far.
func (svc *Service) SentMessages() []core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]core.EmailMessage, len(svc.sent))
	copy(out, svc.sent)
	return out
}

func (svc *Service) Clear() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.sent = nil
}
