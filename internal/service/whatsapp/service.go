package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/libdesk/internal/config"
	"github.com/mamadbah2/libdesk/internal/domain/models"
	"github.com/mamadbah2/libdesk/internal/service/commands"
	client "github.com/mamadbah2/libdesk/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// MessagingService describes the operations the HTTP layer can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API. A nil
// client turns outbound messages into log lines.
type MetaWhatsAppService struct {
	cfg         config.WhatsAppConfig
	ownerMobile string
	client      client.Client
	dispatcher  commands.Dispatcher
	sessions    *SessionManager
	logger      *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, ownerMobile string, c client.Client, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:         cfg,
		ownerMobile: ownerMobile,
		client:      c,
		dispatcher:  dispatcher,
		sessions:    NewSessionManager(time.Hour),
		logger:      logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

var commandReplies = map[string]models.AutomationReply{
	"usage": {
		Title:   "Library Console",
		Message: commands.Usage,
	},
	"student": {
		Title:   "Library Desk",
		Message: "This number only takes instructions from the library owner. Please log in to the student dashboard to see your seat, dues and attendance.",
	},
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if s.cfg.VerifyToken == "" || verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook processes inbound webhook payloads.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, st := range change.Value.Statuses {
				s.logger.Debug("delivery status", zap.String("message_id", st.ID), zap.String("status", st.Status))
			}

			for _, msg := range change.Value.Messages {
				if !s.sessions.FirstDelivery(msg.ID) {
					s.logger.Debug("skip redelivered message", zap.String("message_id", msg.ID))
					continue
				}
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	text := extractMessageText(msg)
	if text == "" {
		return errors.New("empty message body")
	}

	sender := client.LocalMobile(msg.From)
	reply := s.replyFor(ctx, sender, text)

	return s.send(ctx, msg.From, reply)
}

func (s *MetaWhatsAppService) replyFor(ctx context.Context, sender, text string) string {
	if sender != s.ownerMobile || s.dispatcher == nil {
		r := commandReplies["student"]
		return r.Title + "\n" + r.Message
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed owner command", zap.String("command", string(cmd.Type)), zap.Any("args", cmd.Args))

	out, err := s.dispatcher.HandleCommand(ctx, cmd, sender)
	switch {
	case err == nil:
		return out
	case errors.Is(err, commands.ErrUnsupportedCommand), errors.Is(err, commands.ErrInvalidArguments):
		r := commandReplies["usage"]
		return r.Title + "\n" + r.Message
	default:
		s.logger.Info("owner command rejected", zap.String("command", string(cmd.Type)), zap.Error(err))
		return "Not applied: " + err.Error()
	}
}

// SendOutbound lets internal operators push quick notifications via HTTP.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	return s.send(ctx, req.To, req.Message)
}

// Notify sends a plain text message to a student's mobile.
func (s *MetaWhatsAppService) Notify(ctx context.Context, mobile, text string) error {
	return s.send(ctx, mobile, text)
}

func (s *MetaWhatsAppService) send(ctx context.Context, to, body string) error {
	if s.client == nil {
		s.logger.Info("whatsapp disabled, message not sent", zap.String("to", to), zap.String("body", body))
		return nil
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:   to,
		Body: body,
	})
	return err
}

func extractMessageText(msg models.InboundMessage) string {
	if msg.Text != nil {
		return msg.Text.Body
	}

	if msg.Interactive != nil {
		if msg.Interactive.ButtonReply != nil {
			return msg.Interactive.ButtonReply.ID
		}
		if msg.Interactive.ListReply != nil {
			return msg.Interactive.ListReply.ID
		}
	}

	return ""
}
