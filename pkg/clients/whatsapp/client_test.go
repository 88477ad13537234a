package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/libdesk/internal/config"
)

func TestSendTextMessage(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v20.0/123/messages", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	c := NewClient(config.WhatsAppConfig{
		AccessToken:   "token",
		PhoneNumberID: "123",
		BaseURL:       srv.URL + "/",
		APIVersion:    "v20.0",
		CountryCode:   "+91",
	})

	resp, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{To: "9876543210", Body: "hi"})
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "wamid.1", resp.Messages[0].ID)
	assert.Equal(t, "919876543210", got["to"])
}

func TestSendTextMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad recipient","code":131030}}`))
	}))
	defer srv.Close()

	c := NewClient(config.WhatsAppConfig{PhoneNumberID: "123", BaseURL: srv.URL, APIVersion: "v20.0"})

	_, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{To: "1", Body: "hi"})
	assert.EqualError(t, err, "whatsapp api error: code=131030, message=bad recipient")
}

func TestRecipientAndLocalMobile(t *testing.T) {
	c := &APIClient{countryCode: "91"}
	assert.Equal(t, "919876543210", c.Recipient("9876543210"))
	assert.Equal(t, "14155550100", c.Recipient("+14155550100"))

	assert.Equal(t, "9876543210", LocalMobile("919876543210"))
	assert.Equal(t, "9876543210", LocalMobile("9876543210"))
}
