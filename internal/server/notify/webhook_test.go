package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianpress/newsdesk/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSignAndVerify(t *testing.T) {
	body := []byte(`{"event":"author_approval:updated"}`)
	sig := SignBody("secret", body)

	assert.True(t, VerifySignature("secret", body, sig))
	assert.False(t, VerifySignature("other", body, sig))
	assert.False(t, VerifySignature("secret", []byte("tampered"), sig))
	assert.False(t, VerifySignature("", body, sig))
	assert.False(t, VerifySignature("secret", body, ""))
}

func TestPush_DeliversSignedEnvelope(t *testing.T) {
	var gotBody []byte
	var gotSig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSig = r.Header.Get(SignatureHeader)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewWebhookNotifier([]string{srv.URL}, "secret", testLogger())
	err := n.Push(context.Background(), "author_approval:updated", map[string]string{"item_id": "item-1"})
	require.NoError(t, err)

	assert.True(t, VerifySignature("secret", gotBody, gotSig))

	var env struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &env))
	assert.Equal(t, "author_approval:updated", env.Event)
	assert.Equal(t, "item-1", env.Data["item_id"])
}

func TestPush_EndpointFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewWebhookNotifier([]string{srv.URL}, "secret", testLogger())
	err := n.Push(context.Background(), "author_approval:updated", nil)
	assert.Error(t, err)
}

func TestPush_NoSubscribers(t *testing.T) {
	n := NewWebhookNotifier(nil, "secret", testLogger())
	assert.NoError(t, n.Push(context.Background(), "author_approval:updated", nil))
}
