package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSendUsernameReminder(t *testing.T) {
	var got message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "noreply@example.com")
	require.NoError(t, c.SendUsernameReminder(context.Background(), "a@example.com", "alice"))

	require.Equal(t, []string{"a@example.com"}, got.To)
	require.Equal(t, "noreply@example.com", got.From)
	require.True(t, strings.Contains(got.Text, "alice"))
}

func TestSendReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "noreply@example.com")
	err := c.Send(context.Background(), "a@example.com", "s", "t")
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}
