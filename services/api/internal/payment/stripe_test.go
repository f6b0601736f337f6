package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JoseGlez23/runX-API3/services/api/internal/apperr"
)

func TestCreateIntent_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "1999", r.PostForm.Get("amount"))
		require.Equal(t, "mxn", r.PostForm.Get("currency"))
		require.Equal(t, "card", r.PostForm.Get("payment_method_types[0]"))
		require.Equal(t, "42", r.PostForm.Get("metadata[clienteId]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","client_secret":"pi_123_secret_abc"}`))
	}))
	defer srv.Close()

	s := NewStripeWithURL("sk_test_123", srv.URL)
	secret, err := s.CreateIntent(context.Background(), 1999, "mxn", map[string]string{"clienteId": "42"})
	require.NoError(t, err)
	require.Equal(t, "pi_123_secret_abc", secret)
}

func TestCreateIntent_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Invalid currency: zzz"}}`))
	}))
	defer srv.Close()

	s := NewStripeWithURL("sk_test_123", srv.URL)
	_, err := s.CreateIntent(context.Background(), 100, "zzz", nil)
	require.ErrorIs(t, err, apperr.ErrUpstream)

	var pe *Error
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "Invalid currency: zzz", pe.Msg)
}
