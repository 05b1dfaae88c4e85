package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var got rasaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"text":"first"},{"text":"second"}]`))
	}))
	defer srv.Close()

	eng := NewRasaEngine(srv.URL)
	replies, err := eng.Send(context.Background(), "user-42", "hello")
	require.NoError(t, err)

	assert.Equal(t, "user-42", got.Sender)
	assert.Equal(t, "hello", got.Message)
	require.Len(t, replies, 2)
	assert.Equal(t, "first", replies[0].Text)
	assert.Equal(t, "second", replies[1].Text)
}

func TestSendEmptyReplyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	eng := NewRasaEngine(srv.URL)
	replies, err := eng.Send(context.Background(), "u", "hi")
	require.NoError(t, err)
	assert.Empty(t, replies)
}

func TestSendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	eng := NewRasaEngine(srv.URL)
	_, err := eng.Send(context.Background(), "u", "hi")
	assert.Error(t, err)
}

func TestSendUnreachable(t *testing.T) {
	eng := NewRasaEngine("http://127.0.0.1:1/webhooks/rest/webhook")
	_, err := eng.Send(context.Background(), "u", "hi")
	assert.Error(t, err)
}
