package whatsapp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/libdesk/internal/config"
	"github.com/mamadbah2/libdesk/internal/domain/models"
	"github.com/mamadbah2/libdesk/internal/service/commands"
	client "github.com/mamadbah2/libdesk/pkg/clients/whatsapp"
)

const owner = "9000000000"

type sentMessage struct{ to, body string }

type fakeClient struct {
	sent []sentMessage
	err  error
}

func (f *fakeClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	f.sent = append(f.sent, sentMessage{to: req.To, body: req.Body})
	return &client.SendTextMessageResponse{}, f.err
}

type fakeDispatcher struct {
	got   models.Command
	reply string
	err   error
}

func (f *fakeDispatcher) HandleCommand(_ context.Context, cmd models.Command, _ string) (string, error) {
	f.got = cmd
	return f.reply, f.err
}

func textPayload(id, from, body string) models.WebhookPayload {
	return models.WebhookPayload{Entry: []models.WebhookEntry{{Changes: []models.WebhookChange{{
		Value: models.WebhookValue{Messages: []models.InboundMessage{{
			ID: id, From: from, Type: "text", Text: &models.TextContent{Body: body},
		}}},
	}}}}}
}

func setup(d *fakeDispatcher) (*MetaWhatsAppService, *fakeClient) {
	c := &fakeClient{}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{VerifyToken: "verify"}, owner, c, d, nil)
	return svc, c
}

func TestVerifyWebhookToken(t *testing.T) {
	svc, _ := setup(&fakeDispatcher{})

	challenge, err := svc.VerifyWebhookToken("subscribe", "verify", "123")
	require.NoError(t, err)
	assert.Equal(t, "123", challenge)

	_, err = svc.VerifyWebhookToken("subscribe", "wrong", "123")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("unsubscribe", "verify", "123")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("", "", "")
	assert.Error(t, err)
}

func TestOwnerCommandIsDispatched(t *testing.T) {
	d := &fakeDispatcher{reply: "Seat updated."}
	svc, c := setup(d)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("m1", "91"+owner, "/seat 9876543210 5.2")))

	assert.Equal(t, models.CommandSeat, d.got.Type)
	require.Len(t, c.sent, 1)
	assert.Equal(t, "91"+owner, c.sent[0].to)
	assert.Equal(t, "Seat updated.", c.sent[0].body)
}

func TestOwnerCommandErrors(t *testing.T) {
	d := &fakeDispatcher{err: commands.ErrUnsupportedCommand}
	svc, c := setup(d)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("m1", owner, "hello")))
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0].body, "/pay <mobile>")

	d.err = errors.New("conflict: seat 5 shift 2 held by 9988776655")
	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("m2", owner, "/seat 1 5.2")))
	assert.Equal(t, "Not applied: conflict: seat 5 shift 2 held by 9988776655", c.sent[1].body)
}

func TestNonOwnerGetsHelpOnly(t *testing.T) {
	d := &fakeDispatcher{}
	svc, c := setup(d)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("m1", "919876543210", "/pay 9876543210 2024-09 full")))

	assert.Equal(t, models.Command{}, d.got)
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0].body, "only takes instructions from the library owner")
}

func TestRedeliveryIsIgnored(t *testing.T) {
	d := &fakeDispatcher{reply: "ok"}
	svc, c := setup(d)

	payload := textPayload("m1", owner, "/dues")
	require.NoError(t, svc.HandleWebhook(context.Background(), payload))
	require.NoError(t, svc.HandleWebhook(context.Background(), payload))

	assert.Len(t, c.sent, 1)
}

func TestEmptyMessageAndSendFailure(t *testing.T) {
	svc, c := setup(&fakeDispatcher{reply: "ok"})

	err := svc.HandleWebhook(context.Background(), textPayload("m1", owner, ""))
	assert.EqualError(t, err, "empty message body")

	c.err = errors.New("network down")
	assert.EqualError(t, svc.Notify(context.Background(), "9876543210", "reminder"), "network down")
}

func TestDisabledClientOnlyLogs(t *testing.T) {
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, owner, nil, nil, nil)
	assert.NoError(t, svc.SendOutbound(context.Background(), models.OutboundMessageRequest{To: "9876543210", Message: "hi"}))
}

func TestSessionManagerExpires(t *testing.T) {
	sm := NewSessionManager(time.Minute)
	now := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	sm.now = func() time.Time { return now }

	assert.True(t, sm.FirstDelivery("a"))
	assert.False(t, sm.FirstDelivery("a"))
	assert.True(t, sm.FirstDelivery(""))

	now = now.Add(2 * time.Minute)
	assert.True(t, sm.FirstDelivery("a"))
}
