package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MembershipTier is the stored membership level of a user.
type MembershipTier string

const (
	MembershipFree   MembershipTier = "free"
	MembershipSilver MembershipTier = "silver"
	MembershipGold   MembershipTier = "gold"
)

type User struct {
	ID                int64           `db:"id" json:"id"`
	Username          string          `db:"username" json:"username"`
	Email             string          `db:"email" json:"email,omitempty"`
	PasswordHash      string          `db:"password_hash" json:"-"`
	MembershipTier    MembershipTier  `db:"membership_tier" json:"membership_tier"`
	SilverPlusActive  bool            `db:"silver_plus_active" json:"silver_plus_active"`
	DiamondPlusActive bool            `db:"diamond_plus_active" json:"diamond_plus_active"`
	TipEarnings       decimal.Decimal `db:"tip_earnings" json:"tip_earnings"`
	ReferralEarnings  decimal.Decimal `db:"referral_earnings" json:"referral_earnings"`
	ReferredBy        string          `db:"referred_by" json:"referred_by,omitempty"`
	ProfilePhotoURL   string          `db:"profile_photo_url" json:"profile_photo_url,omitempty"`
	CoverPhotoURL     string          `db:"cover_photo_url" json:"cover_photo_url,omitempty"`
	BannerPhotoURL    string          `db:"banner_photo_url" json:"banner_photo_url,omitempty"`
	Videos            []Video         `db:"videos" json:"videos"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
}

// Membership returns the flags the access gate is evaluated against.
func (u *User) Membership() Membership {
	return Membership{
		Tier:              u.MembershipTier,
		SilverPlusActive:  u.SilverPlusActive,
		DiamondPlusActive: u.DiamondPlusActive,
	}
}

// Video is one entry of a user's video list.
type Video struct {
	URL        string      `json:"url"`
	Tier       ContentTier `json:"tier"`
	Slot       string      `json:"slot"`
	IsSilver   bool        `json:"is_silver"`
	IsGold     bool        `json:"is_gold"`
	UploadedAt time.Time   `json:"uploaded_at"`
}
