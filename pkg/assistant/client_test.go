package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ask", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hola", body["query"])

		json.NewEncoder(w).Encode(map[string]string{"response": "¡Hola! ¿En qué puedo ayudarte?"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	answer, err := client.Ask(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, "¡Hola! ¿En qué puedo ayudarte?", answer)
}

func TestAskNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	_, err := client.Ask(context.Background(), "hola")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
}

func TestAskErrorFieldOn200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "model overloaded"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	_, err := client.Ask(context.Background(), "hola")

	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "model overloaded", backendErr.Message)
}

func TestAskMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	_, err := client.Ask(context.Background(), "hola")
	require.Error(t, err)
}

func TestAskTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewHTTPClient(server.URL, time.Second)
	_, err := client.Ask(context.Background(), "hola")
	require.Error(t, err)

	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestAskTrimsTrailingSlash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ask", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"response": "ok"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL+"/", 5*time.Second)
	_, err := client.Ask(context.Background(), "hola")
	require.NoError(t, err)
}
