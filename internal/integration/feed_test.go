package integration

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"membership_webapp/internal/domain"
	"membership_webapp/internal/repository"
	"membership_webapp/internal/service"
	"membership_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// A settled tip notifies Postgres; the listener relays it to subscribed
// feed clients.
func TestSettledTipReachesFeed(t *testing.T) {
	db, dsn := openDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	users := repository.NewUserRepository(db)
	creator := createUser(t, users, uniq("creator"))
	fan := createUser(t, users, uniq("fan"))

	jackpot := service.NewJackpotService(repository.NewTicketRepository(db), time.UTC)
	hub := ws.NewHub(func(ctx context.Context, topic string, userID int64) (any, error) {
		if topic == ws.TopicMyTickets {
			return jackpot.ForUser(ctx, userID)
		}
		return jackpot.Current(ctx)
	})
	go func() { _ = ws.NewListener(dsn, domain.JackpotChannel, hub).Run(ctx) }()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws/jackpot", ws.HandleFeed(ctx, hub, func(context.Context, string) (int64, error) {
		return fan.ID, nil
	}, []string{"*"}))
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(strings.Replace(srv.URL, "http", "ws", 1)+"/ws/jackpot?token=x", nil)
	require.NoError(t, err)
	defer conn.Close()

	type frame struct {
		Type  string          `json:"type"`
		Topic string          `json:"topic"`
		Data  json.RawMessage `json:"data"`
	}
	// next returns the first frame matching typ and topic
	next := func(typ, topic string) frame {
		deadline := time.Now().Add(10 * time.Second)
		for {
			_ = conn.SetReadDeadline(deadline)
			var f frame
			require.NoError(t, conn.ReadJSON(&f))
			if f.Type == typ && f.Topic == topic {
				return f
			}
		}
	}

	next(ws.MsgReady, "")
	require.NoError(t, conn.WriteJSON(ws.Inbound{Type: ws.MsgSubscribe, Topic: ws.TopicMyTickets}))
	next(ws.MsgSnapshot, ws.TopicMyTickets)

	tips := service.NewTipService(service.NewPgLedger(db), nil, time.UTC)
	_, err = tips.Settle(context.Background(), service.TipRequest{
		OrderID:        uniq("ORDER"),
		Amount:         decimal.RequireFromString("4.00"),
		TippedUsername: creator.Username,
		TipperUsername: fan.Username,
	})
	require.NoError(t, err)

	// the listener also pushes once on connect; wait for the count to land
	for {
		f := next(ws.MsgUpdate, ws.TopicMyTickets)
		var view service.MyTicketsView
		require.NoError(t, json.Unmarshal(f.Data, &view))
		if view.Tickets == 4 {
			return
		}
	}
}
