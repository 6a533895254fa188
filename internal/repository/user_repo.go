package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"membership_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PhotoColumns maps an upload photoType onto the users column it updates.
var PhotoColumns = map[string]string{
	"profile": "profile_photo_url",
	"cover":   "cover_photo_url",
	"banner":  "banner_photo_url",
}

const userColumns = `id, username, COALESCE(email, ''), password_hash, membership_tier,
	silver_plus_active, diamond_plus_active, tip_earnings::text, referral_earnings::text,
	COALESCE(referred_by, ''), COALESCE(profile_photo_url, ''), COALESCE(cover_photo_url, ''),
	COALESCE(banner_photo_url, ''), videos, created_at`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// GetByUsername looks a user up by exact username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return getUserByUsername(ctx, r.db, username)
}

// GetByUsernameTx is GetByUsername inside an open transaction.
func (r *UserRepository) GetByUsernameTx(ctx context.Context, tx pgx.Tx, username string) (*domain.User, error) {
	return getUserByUsername(ctx, tx, username)
}

func getUserByUsername(ctx context.Context, q querier, username string) (*domain.User, error) {
	row := q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail matches case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

// Create inserts u and fills ID and CreatedAt. A taken username or email
// yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	if u.MembershipTier == "" {
		u.MembershipTier = domain.MembershipFree
	}

	var email, referredBy *string
	if u.Email != "" {
		email = &u.Email
	}
	if u.ReferredBy != "" {
		referredBy = &u.ReferredBy
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, membership_tier, referred_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		u.Username, email, u.PasswordHash, u.MembershipTier, referredBy,
	).Scan(&u.ID, &u.CreatedAt)
	return translate(err)
}

// UpdatePasswordHash replaces the stored credential, used when a legacy
// hash is upgraded after a successful login.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		hash, userID,
	)
	return err
}

// SetPhotoURL updates the column photoType maps to.
func (r *UserRepository) SetPhotoURL(ctx context.Context, username, photoType, url string) error {
	column, ok := PhotoColumns[photoType]
	if !ok {
		return fmt.Errorf("unknown photo type %q", photoType)
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE users SET `+column+` = $1, updated_at = NOW() WHERE username = $2`,
		url, username,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendVideo adds v to the end of the user's video list.
func (r *UserRepository) AppendVideo(ctx context.Context, username string, v domain.Video) error {
	entry, err := json.Marshal([]domain.Video{v})
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE users SET videos = videos || $1::jsonb, updated_at = NOW() WHERE username = $2`,
		string(entry), username,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddTipEarningsTx credits a tipped user's earnings counter.
func (r *UserRepository) AddTipEarningsTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal) error {
	_, err := tx.Exec(ctx,
		`UPDATE users SET tip_earnings = tip_earnings + $1::numeric, updated_at = NOW() WHERE id = $2`,
		amount.String(), userID,
	)
	return err
}

// AddReferralEarningsTx credits a referrer's earnings counter.
func (r *UserRepository) AddReferralEarningsTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal) error {
	_, err := tx.Exec(ctx,
		`UPDATE users SET referral_earnings = referral_earnings + $1::numeric, updated_at = NOW() WHERE id = $2`,
		amount.String(), userID,
	)
	return err
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u                domain.User
		tipEarnings      string
		referralEarnings string
		videosJSON       []byte
	)

	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.MembershipTier,
		&u.SilverPlusActive,
		&u.DiamondPlusActive,
		&tipEarnings,
		&referralEarnings,
		&u.ReferredBy,
		&u.ProfilePhotoURL,
		&u.CoverPhotoURL,
		&u.BannerPhotoURL,
		&videosJSON,
		&u.CreatedAt,
	); err != nil {
		return nil, translate(err)
	}

	u.TipEarnings = parseDecimal(tipEarnings)
	u.ReferralEarnings = parseDecimal(referralEarnings)
	u.Videos = []domain.Video{}
	if len(videosJSON) > 0 {
		_ = json.Unmarshal(videosJSON, &u.Videos)
	}

	return &u, nil
}
