package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	gws "github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens map[string]uuid.UUID

func (s staticTokens) ParseToken(tokenStr string) (uuid.UUID, error) {
	id, ok := s[tokenStr]
	if !ok {
		return uuid.Nil, errors.New("invalid token")
	}
	return id, nil
}

func newTestHub(t *testing.T, tokens staticTokens) (*Hub, *redis.Client, *httptest.Server) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	hub := NewHub(rdb, tokens)
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(srv.Close)
	return hub, rdb, srv
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/?token=" + token
}

func TestHub_RejectsMissingOrBadToken(t *testing.T) {
	_, _, srv := newTestHub(t, staticTokens{})

	for _, token := range []string{"", "forged"} {
		_, resp, err := gws.DefaultDialer.Dial(wsURL(srv, token), nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestHub_DeliversPublishedUpdates(t *testing.T) {
	userID := uuid.New()
	hub, rdb, srv := newTestHub(t, staticTokens{"good": userID})

	conn, _, err := gws.DefaultDialer.Dial(wsURL(srv, "good"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Connections(userID) == 1 }, time.Second, 10*time.Millisecond)

	// The subscription starts asynchronously, so publish until someone hears it.
	ctx := context.Background()
	require.Eventually(t, func() bool {
		n, err := rdb.Publish(ctx, UserChannel(userID), `{"type":"meal_logged"}`).Result()
		return err == nil && n > 0
	}, 2*time.Second, 20*time.Millisecond)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"meal_logged"}`, string(data))
}

func TestHub_UnregistersOnClose(t *testing.T) {
	userID := uuid.New()
	hub, _, srv := newTestHub(t, staticTokens{"good": userID})

	conn, _, err := gws.DefaultDialer.Dial(wsURL(srv, "good"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Connections(userID) == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Connections(userID) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestUserChannel(t *testing.T) {
	id := uuid.MustParse("7f1e0b1c-2a4d-4c55-9a1e-0d2f3b4c5d6e")
	assert.Equal(t, "user_updates:7f1e0b1c-2a4d-4c55-9a1e-0d2f3b4c5d6e", UserChannel(id))
}
