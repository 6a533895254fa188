// Command ws_smoke connects to a running server's jackpot feed, checks the
// initial snapshots and waits for a pushed update after a manual notify.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"membership_webapp/internal/db"
	"membership_webapp/internal/domain"
	"membership_webapp/internal/repository"
	"membership_webapp/internal/service"
	"membership_webapp/internal/ws"

	"github.com/gorilla/websocket"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	ctx := context.Background()
	users := repository.NewUserRepository(pool)

	u, err := users.GetByUsername(ctx, "smoke_feed")
	if errors.Is(err, repository.ErrNotFound) {
		hash, herr := service.HashPassword("smoke-feed-password")
		if herr != nil {
			log.Fatalf("hash: %v", herr)
		}
		u = &domain.User{Username: "smoke_feed", PasswordHash: hash}
		err = users.Create(ctx, u)
	}
	if err != nil {
		log.Fatalf("prepare user: %v", err)
	}

	service.InitJWT(jwtSecret)
	token, _, err := service.GenerateJWT(u.ID, u.Username)
	if err != nil {
		log.Fatalf("token: %v", err)
	}

	url := fmt.Sprintf("ws://localhost:%s/ws/jackpot?token=%s", port, token)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	expect(conn, ws.MsgReady, "")

	for _, topic := range []string{ws.TopicJackpot, ws.TopicMyTickets} {
		send(conn, ws.Inbound{Type: ws.MsgSubscribe, Topic: topic})
		msg := expect(conn, ws.MsgSnapshot, topic)
		log.Printf("snapshot %s: %s", topic, msg.Data)
	}

	if _, err := pool.Exec(ctx, `SELECT pg_notify($1, $2)`, domain.JackpotChannel, "smoke"); err != nil {
		log.Fatalf("notify: %v", err)
	}

	msg := expect(conn, ws.MsgUpdate, "")
	log.Printf("update %s: %s", msg.Topic, msg.Data)
	log.Println("smoke ok")
}

type frame struct {
	Type  string          `json:"type"`
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

func send(conn *websocket.Conn, in ws.Inbound) {
	if err := conn.WriteJSON(in); err != nil {
		log.Fatalf("write %s: %v", in.Type, err)
	}
}

// expect reads until a frame of the given type (and topic, when set)
// arrives or the deadline passes.
func expect(conn *websocket.Conn, typ, topic string) frame {
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			log.Fatalf("waiting for %s: %v", typ, err)
		}
		if f.Type == ws.MsgError {
			log.Fatalf("server error: %s", f.Data)
		}
		if f.Type == typ && (topic == "" || f.Topic == topic) {
			return f
		}
	}
}
