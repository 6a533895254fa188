package service

import (
	"context"
	"time"

	"membership_webapp/internal/domain"
	"membership_webapp/internal/repository"

	"github.com/shopspring/decimal"
)

// TicketReader is the read side of the ticket repository.
type TicketReader interface {
	Summary(ctx context.Context, drawDate time.Time) (*repository.DrawSummary, error)
	CountForUser(ctx context.Context, userID int64, drawDate time.Time) (int64, error)
	Holders(ctx context.Context, drawDate time.Time, limit int) ([]repository.Holder, error)
}

// JackpotView is the public state of the next drawing.
type JackpotView struct {
	DrawDate     time.Time       `json:"draw_date"`
	TotalTickets int64           `json:"total_tickets"`
	TotalTipped  decimal.Decimal `json:"total_tipped"`
}

// MyTicketsView is one user's stake in the next drawing.
type MyTicketsView struct {
	DrawDate     time.Time `json:"draw_date"`
	Tickets      int64     `json:"tickets"`
	TotalTickets int64     `json:"total_tickets"`
}

type JackpotService struct {
	tickets TicketReader
	drawLoc *time.Location
	now     func() time.Time
}

func NewJackpotService(tickets TicketReader, drawLoc *time.Location) *JackpotService {
	return &JackpotService{tickets: tickets, drawLoc: drawLoc, now: time.Now}
}

func (s *JackpotService) NextDraw() time.Time {
	return domain.NextDrawDate(s.now(), s.drawLoc)
}

func (s *JackpotService) Current(ctx context.Context) (*JackpotView, error) {
	sum, err := s.tickets.Summary(ctx, s.NextDraw())
	if err != nil {
		return nil, err
	}
	return &JackpotView{
		DrawDate:     sum.DrawDate,
		TotalTickets: sum.TotalTickets,
		TotalTipped:  sum.TotalTipped,
	}, nil
}

func (s *JackpotService) ForUser(ctx context.Context, userID int64) (*MyTicketsView, error) {
	draw := s.NextDraw()
	sum, err := s.tickets.Summary(ctx, draw)
	if err != nil {
		return nil, err
	}
	n, err := s.tickets.CountForUser(ctx, userID, draw)
	if err != nil {
		return nil, err
	}
	return &MyTicketsView{DrawDate: draw, Tickets: n, TotalTickets: sum.TotalTickets}, nil
}

// Holders lists the largest ticket holders for the drawing at drawDate.
func (s *JackpotService) Holders(ctx context.Context, drawDate time.Time, limit int) ([]repository.Holder, error) {
	return s.tickets.Holders(ctx, drawDate, limit)
}
