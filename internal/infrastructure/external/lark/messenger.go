package lark

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"

	"github.com/garyjia/brokerage-backoffice/internal/application/port"
)

// Receive id types accepted by the IM message API
const (
	ReceiveIDTypeOpenID = "open_id"
	ReceiveIDTypeUserID = "user_id"
	ReceiveIDTypeEmail  = "email"
	ReceiveIDTypeChatID = "chat_id"
)

// messageCreator is the part of the IM message API the messenger uses
type messageCreator interface {
	Create(ctx context.Context, req *larkim.CreateMessageReq, options ...larkcore.RequestOptionFunc) (*larkim.CreateMessageResp, error)
}

// Messenger implements port.MessageSender over Lark IM text messages
type Messenger struct {
	messages messageCreator
	logger   *zap.Logger
}

// NewMessenger creates a new Lark message sender adapter
func NewMessenger(client *Client, logger *zap.Logger) *Messenger {
	return &Messenger{
		messages: client.SDK().Im.Message,
		logger:   logger,
	}
}

// SendMessage sends a text message. The receive id type is derived from the
// id: ou_ open ids, oc_ chat ids, addresses with @ as email, else user ids.
func (m *Messenger) SendMessage(ctx context.Context, receiverID string, content string) error {
	if receiverID == "" {
		return fmt.Errorf("receiverID cannot be empty")
	}
	if content == "" {
		return fmt.Errorf("content cannot be empty")
	}

	body, err := json.Marshal(map[string]string{"text": content})
	if err != nil {
		return fmt.Errorf("failed to marshal text content: %w", err)
	}

	idType := ReceiveIDType(receiverID)
	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(idType).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(receiverID).
			MsgType(larkim.MsgTypeText).
			Content(string(body)).
			Build()).
		Build()

	resp, err := m.messages.Create(ctx, req)
	if err != nil {
		m.logger.Error("Failed to send message",
			zap.String("receive_id", receiverID),
			zap.Error(err))
		return fmt.Errorf("failed to send message: %w", err)
	}

	if !resp.Success() {
		m.logger.Error("API returned failure",
			zap.String("receive_id", receiverID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	messageID := ""
	if resp.Data != nil && resp.Data.MessageId != nil {
		messageID = *resp.Data.MessageId
	}

	m.logger.Info("Message sent successfully",
		zap.String("message_id", messageID),
		zap.String("receive_id_type", idType),
		zap.String("receive_id", receiverID))

	return nil
}

// ReceiveIDType picks the receive id type for an identifier
func ReceiveIDType(id string) string {
	switch {
	case strings.HasPrefix(id, "ou_"):
		return ReceiveIDTypeOpenID
	case strings.HasPrefix(id, "oc_"):
		return ReceiveIDTypeChatID
	case strings.Contains(id, "@"):
		return ReceiveIDTypeEmail
	default:
		return ReceiveIDTypeUserID
	}
}

// LogMessenger writes notices to the log instead of delivering them.
// Used when no Lark credentials are configured.
type LogMessenger struct {
	logger *zap.Logger
}

// NewLogMessenger creates a sender that only logs
func NewLogMessenger(logger *zap.Logger) *LogMessenger {
	return &LogMessenger{logger: logger}
}

// SendMessage logs the notice
func (m *LogMessenger) SendMessage(ctx context.Context, receiverID string, content string) error {
	m.logger.Info("Notice (delivery disabled)",
		zap.String("receive_id", receiverID),
		zap.String("content", content))
	return nil
}

// NewSender returns a Lark messenger when credentials are set and a
// LogMessenger otherwise.
func NewSender(cfg Config, logger *zap.Logger) port.MessageSender {
	if !cfg.Enabled() {
		logger.Warn("Lark credentials not configured, notices will only be logged")
		return NewLogMessenger(logger)
	}
	return NewMessenger(NewClient(cfg, logger), logger)
}

var (
	_ port.MessageSender = (*Messenger)(nil)
	_ port.MessageSender = (*LogMessenger)(nil)
)
