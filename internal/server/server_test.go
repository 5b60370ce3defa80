package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"copyshop-bot/internal/bot"
	"copyshop-bot/internal/pricing"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()

	if cfg.Tables == nil {
		cfg.Tables = pricing.NewStore(pricing.DefaultTable())
	}
	if cfg.Responder == nil {
		cfg.Responder = bot.NewResponder(bot.ResponderConfig{
			Tables: cfg.Tables,
			Policy: pricing.DefaultPolicy(),
			Logger: zap.NewNop(),
		})
	}
	cfg.Logger = zap.NewNop()
	return New(cfg)
}

func postJSON(t *testing.T, path string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Widget(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ระบบคำนวณราคาถ่ายเอกสาร")
}

func TestServer_Chat(t *testing.T) {
	srv := newTestServer(t, Config{})

	req := postJSON(t, "/chat", map[string]string{
		"message":    "A4 ขาวดำ หน้าเดียว 50 หน้า",
		"session_id": "t1",
	})
	resp, err := srv.App().Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Reply string `json:"reply"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	assert.Contains(t, parsed.Reply, "ราคาสุทธิ: 25.00 บาท")
}

func TestServer_ChatBadBody(t *testing.T) {
	srv := newTestServer(t, Config{})

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte("{broken")))
	resp, err := srv.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func webhookPayload(text string) map[string]any {
	return map[string]any{
		"events": []map[string]any{{
			"type":       "message",
			"replyToken": "tok",
			"source":     map[string]any{"userId": "U1"},
			"message":    map[string]any{"type": "text", "text": text},
		}},
	}
}

func TestServer_WebhookSignatureRejected(t *testing.T) {
	srv := newTestServer(t, Config{ChannelSecret: "secret"})

	req := postJSON(t, "/webhook", webhookPayload("A4 50"))
	req.Header.Set("X-Line-Signature", "bogus")
	resp, err := srv.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_WebhookAccepted(t *testing.T) {
	srv := newTestServer(t, Config{ChannelSecret: "secret"})

	body, err := json.Marshal(webhookPayload("A4 50"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Line-Signature", sign("secret", body))

	// No LINE client configured: events are processed, replies dropped,
	// and the webhook still acknowledges with 200.
	resp, err := srv.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_WebhookIgnoresNonText(t *testing.T) {
	srv := newTestServer(t, Config{})

	payload := map[string]any{
		"events": []map[string]any{{
			"type":       "message",
			"replyToken": "tok",
			"message":    map[string]any{"type": "image", "id": "123"},
		}},
	}
	resp, err := srv.App().Test(postJSON(t, "/webhook", payload))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_AdminReloadAuth(t *testing.T) {
	srv := newTestServer(t, Config{AdminToken: "admintok"})

	// Missing token.
	resp, err := srv.App().Test(httptest.NewRequest(http.MethodPost, "/admin/reload", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Wrong token.
	req := httptest.NewRequest(http.MethodPost, "/admin/reload", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = srv.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Right token but no spreadsheet configured.
	req = httptest.NewRequest(http.MethodPost, "/admin/reload", nil)
	req.Header.Set("Authorization", "Bearer admintok")
	resp, err = srv.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestServer_AdminHiddenWithoutToken(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodPost, "/admin/reload", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
