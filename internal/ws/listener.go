package ws

import (
	"context"
	"time"

	"membership_webapp/internal/logger"

	"github.com/jackc/pgx/v5"
)

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// Listener relays Postgres notifications on a channel to the hub. It
// holds its own connection and reconnects with capped backoff.
type Listener struct {
	dsn     string
	channel string
	hub     *Hub
}

func NewListener(dsn, channel string, hub *Hub) *Listener {
	return &Listener{dsn: dsn, channel: channel, hub: hub}
}

// Run blocks until ctx is done.
func (l *Listener) Run(ctx context.Context) error {
	log := logger.With("component", "jackpot_listener", "channel", l.channel)
	backoff := minBackoff

	for {
		err := l.listen(ctx, func() { backoff = minBackoff })
		if ctx.Err() != nil {
			return nil
		}

		log.Warn("listener disconnected, retrying", "error", err, "backoff", backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff)
	}
}

func (l *Listener) listen(ctx context.Context, connected func()) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return err
	}
	connected()
	logger.Info("listening for jackpot updates", "channel", l.channel)

	// anything missed while disconnected is covered by a fresh push
	l.hub.Broadcast(ctx)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		logger.Debug("jackpot notification", "payload", n.Payload)
		l.hub.Broadcast(ctx)
	}
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}
