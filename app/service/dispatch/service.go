package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"warelay/app/config"
	"warelay/app/service/history"
	"warelay/app/service/queue"

	"github.com/samber/do"
)

// Transport delivers outbound text to a full address
// ("<senderID>@<domain suffix>"). Failures are not retried here.
type Transport interface {
	SendText(ctx context.Context, address, message string) error
}

// Generator produces a reply to message given the sender's previous turn
// pair. Both pair sides may be configured placeholders when the sender has
// no prior context.
type Generator interface {
	Generate(ctx context.Context, lastUser, lastAssistant, message string) (string, error)
}

type Service struct {
	cfg        *config.Config
	historySvc *history.Service
	queueSvc   *queue.Service
	generator  Generator
	transport  Transport
}

func New(di *do.Injector) (*Service, error) {
	return newService(
		do.MustInvoke[*config.Config](di),
		do.MustInvoke[*history.Service](di),
		do.MustInvoke[*queue.Service](di),
		do.MustInvoke[Generator](di),
		do.MustInvoke[Transport](di),
	), nil
}

func newService(
	cfg *config.Config,
	historySvc *history.Service,
	queueSvc *queue.Service,
	generator Generator,
	transport Transport,
) *Service {
	return &Service{
		cfg:        cfg,
		historySvc: historySvc,
		queueSvc:   queueSvc,
		generator:  generator,
		transport:  transport,
	}
}

// HandleMessage routes one inbound message: unsupported bodies get the fixed
// notice and touch no state; everything else is recorded and queued for a
// serialized generation pass.
func (s *Service) HandleMessage(ctx context.Context, senderID, body string) error {
	if IsUnsupported(body) {
		slog.Info("Unsupported message type",
			"sender", senderID,
			"body", body,
		)

		if err := s.transport.SendText(ctx, s.address(senderID), s.cfg.Bot.UnsupportedNotice); err != nil {
			return fmt.Errorf("failed to send unsupported notice: %w", err)
		}

		return nil
	}

	s.historySvc.Append(senderID, body, history.RoleUser)

	// Snapshot the context now so a rapid follow-up from the same sender
	// cannot leak into this task's prompt.
	pair := s.contextPair(senderID)

	s.queueSvc.Enqueue(queue.Task{
		Sender: senderID,
		Run: func(taskCtx context.Context) error {
			return s.generateAndReply(taskCtx, senderID, body, pair)
		},
	})

	return nil
}

func (s *Service) generateAndReply(ctx context.Context, senderID, body string, pair history.Pair) error {
	reply, err := s.generator.Generate(ctx, pair.LastUser, pair.LastAssistant, body)
	if err != nil {
		return fmt.Errorf("generator.Generate: %w", err)
	}

	s.historySvc.Append(senderID, reply, history.RoleAssistant)

	if err = s.transport.SendText(ctx, s.address(senderID), reply); err != nil {
		return fmt.Errorf("transport.SendText: %w", err)
	}

	return nil
}

func (s *Service) contextPair(senderID string) history.Pair {
	pair, ok := s.historySvc.LatestPair(senderID)
	if ok {
		return pair
	}

	return history.Pair{
		LastUser:      strings.ReplaceAll(s.cfg.Bot.DefaultUserContext, "{sender_id}", senderID),
		LastAssistant: strings.ReplaceAll(s.cfg.Bot.DefaultAssistantContext, "{sender_id}", senderID),
	}
}

func (s *Service) address(senderID string) string {
	return senderID + "@" + s.cfg.WhatsApp.DomainSuffix
}
