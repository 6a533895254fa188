package repository

import (
	"context"
	"time"

	"membership_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type TicketRepository struct {
	db *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{db: db}
}

// DrawSummary aggregates one drawing.
type DrawSummary struct {
	DrawDate     time.Time       `json:"draw_date"`
	TotalTickets int64           `json:"total_tickets"`
	TotalTipped  decimal.Decimal `json:"total_tipped"`
}

// Holder is one user's ticket total for a drawing.
type Holder struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Tickets  int64  `json:"tickets"`
}

// CreateBatchWithTx inserts b.Count ticket rows in one statement; the
// rows are generated server side.
func (r *TicketRepository) CreateBatchWithTx(ctx context.Context, tx pgx.Tx, b domain.TicketBatch) (int64, error) {
	if b.Count <= 0 {
		return 0, nil
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO jackpot_tickets (user_id, count, draw_date, source, source_transaction_id)
		SELECT $1, 1, $2, $3, $4 FROM generate_series(1, $5::integer)
	`, b.UserID, b.DrawDate, b.Source, b.SourceTransactionID, b.Count)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Summary returns the totals for the drawing at drawDate.
func (r *TicketRepository) Summary(ctx context.Context, drawDate time.Time) (*DrawSummary, error) {
	s := &DrawSummary{DrawDate: drawDate}

	if err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(count), 0) FROM jackpot_tickets WHERE draw_date = $1
	`, drawDate).Scan(&s.TotalTickets); err != nil {
		return nil, err
	}

	var tipped string
	if err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)::text
		FROM tip_transactions
		WHERE id IN (SELECT source_transaction_id FROM jackpot_tickets WHERE draw_date = $1)
	`, drawDate).Scan(&tipped); err != nil {
		return nil, err
	}
	s.TotalTipped = parseDecimal(tipped)

	return s, nil
}

// CountForUser returns how many tickets userID holds for drawDate.
func (r *TicketRepository) CountForUser(ctx context.Context, userID int64, drawDate time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(count), 0) FROM jackpot_tickets WHERE user_id = $1 AND draw_date = $2
	`, userID, drawDate).Scan(&n)
	return n, err
}

// Holders lists ticket totals per user for drawDate, largest first.
func (r *TicketRepository) Holders(ctx context.Context, drawDate time.Time, limit int) ([]Holder, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.user_id, u.username, SUM(t.count) AS tickets
		FROM jackpot_tickets t
		JOIN users u ON u.id = t.user_id
		WHERE t.draw_date = $1
		GROUP BY t.user_id, u.username
		ORDER BY tickets DESC, u.username
		LIMIT $2
	`, drawDate, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holders []Holder
	for rows.Next() {
		var h Holder
		if err := rows.Scan(&h.UserID, &h.Username, &h.Tickets); err != nil {
			return nil, err
		}
		holders = append(holders, h)
	}
	return holders, rows.Err()
}
