package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingSnapshots struct {
	calls map[string]int
}

func (s *countingSnapshots) fn(_ context.Context, topic string, userID int64) (any, error) {
	s.calls[topic]++
	return map[string]any{"topic": topic, "user_id": userID, "n": s.calls[topic]}, nil
}

func newTestClient(hub *Hub, userID int64, buffer int) *Client {
	c := &Client{UserID: userID, Send: make(chan []byte, buffer), Hub: hub}
	hub.Register(c)
	return c
}

func next(t *testing.T, c *Client) Outbound {
	t.Helper()
	select {
	case msg := <-c.Send:
		var o Outbound
		require.NoError(t, json.Unmarshal(msg, &o))
		return o
	case <-time.After(time.Second):
		t.Fatal("no message")
	}
	return Outbound{}
}

func TestSubscribeIsIdempotentAndResnapshots(t *testing.T) {
	snaps := &countingSnapshots{calls: map[string]int{}}
	hub := NewHub(snaps.fn)
	c := newTestClient(hub, 7, 8)
	ctx := context.Background()

	require.True(t, hub.Subscribe(ctx, c, TopicJackpot))
	require.False(t, hub.Subscribe(ctx, c, TopicJackpot))
	require.Equal(t, []string{TopicJackpot}, hub.Topics(c))

	first := next(t, c)
	second := next(t, c)
	require.Equal(t, MsgSnapshot, first.Type)
	require.Equal(t, MsgSnapshot, second.Type)
	require.Equal(t, 2, snaps.calls[TopicJackpot])

	// one subscription means one update per broadcast
	hub.Broadcast(ctx)
	up := next(t, c)
	require.Equal(t, MsgUpdate, up.Type)
	require.Len(t, c.Send, 0)
}

func TestBroadcastReachesOnlySubscribers(t *testing.T) {
	snaps := &countingSnapshots{calls: map[string]int{}}
	hub := NewHub(snaps.fn)
	ctx := context.Background()

	a := newTestClient(hub, 1, 8)
	b := newTestClient(hub, 2, 8)
	idle := newTestClient(hub, 3, 8)

	hub.Subscribe(ctx, a, TopicJackpot)
	hub.Subscribe(ctx, b, TopicJackpot)
	hub.Subscribe(ctx, b, TopicMyTickets)
	next(t, a)
	next(t, b)
	next(t, b)

	before := snaps.calls[TopicJackpot]
	hub.Broadcast(ctx)

	require.Equal(t, MsgUpdate, next(t, a).Type)
	require.Len(t, b.Send, 2)
	require.Len(t, idle.Send, 0)
	// shared topic built once for both subscribers
	require.Equal(t, before+1, snaps.calls[TopicJackpot])
}

func TestUnsubscribeAndUnregister(t *testing.T) {
	snaps := &countingSnapshots{calls: map[string]int{}}
	hub := NewHub(snaps.fn)
	ctx := context.Background()
	c := newTestClient(hub, 1, 8)

	hub.Subscribe(ctx, c, TopicJackpot)
	next(t, c)
	hub.Unsubscribe(c, TopicJackpot)
	hub.Broadcast(ctx)
	require.Len(t, c.Send, 0)

	hub.Unregister(c)
	hub.Unregister(c)
	_, open := <-c.Send
	require.False(t, open)

	// delivering to a gone client is a no-op
	hub.deliver(c, []byte("x"))
}

func TestSlowClientDropsInsteadOfBlocking(t *testing.T) {
	snaps := &countingSnapshots{calls: map[string]int{}}
	hub := NewHub(snaps.fn)
	ctx := context.Background()
	c := newTestClient(hub, 1, 1)

	hub.Subscribe(ctx, c, TopicJackpot)
	done := make(chan struct{})
	go func() {
		hub.Broadcast(ctx)
		hub.Broadcast(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full client")
	}
	require.Len(t, c.Send, 1)
}

func TestOriginAllowed(t *testing.T) {
	require.True(t, originAllowed("https://a.example", []string{"*"}))
	require.True(t, originAllowed("https://a.example", []string{"https://a.example"}))
	require.False(t, originAllowed("https://evil.example", []string{"https://a.example"}))
	require.True(t, originAllowed("", []string{"https://a.example"}))
}

func TestNextBackoffIsCapped(t *testing.T) {
	require.Equal(t, 2*time.Second, nextBackoff(time.Second))
	require.Equal(t, maxBackoff, nextBackoff(20*time.Second))
}
