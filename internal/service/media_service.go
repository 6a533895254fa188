package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"regexp"
	"strings"
	"time"

	"membership_webapp/internal/domain"
	"membership_webapp/internal/logger"
	"membership_webapp/internal/metrics"
	"membership_webapp/internal/repository"
	"membership_webapp/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
)

const (
	MaxImageSize int64 = 10 << 20
	MaxVideoSize int64 = 200 << 20

	sniffLen = 3072
)

var (
	imageTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/gif":  ".gif",
		"image/webp": ".webp",
	}
	videoTypes = map[string]string{
		"video/mp4":       ".mp4",
		"video/webm":      ".webm",
		"video/quicktime": ".mov",
	}
)

// ValidateUpload checks a declared content type and size against the
// limits for kind and returns the file extension to store it under.
func ValidateUpload(kind MediaKind, contentType string, size int64) (string, error) {
	allowed, limit := imageTypes, MaxImageSize
	if kind == MediaVideo {
		allowed, limit = videoTypes, MaxVideoSize
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMedia, contentType)
	}
	ext, ok := allowed[strings.ToLower(mediaType)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, mediaType)
	}
	if size <= 0 {
		return "", fmt.Errorf("%w: empty file", ErrInvalidInput)
	}
	if size > limit {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, size, limit)
	}
	return ext, nil
}

// video slots become part of the object key
var videoSlotPattern = regexp.MustCompile(`^(free|silver|gold)[0-9]*$`)

// SlotTier maps a video slot name (free1, silver2, gold...) to its tier.
// The slot is returned lowercased and trimmed.
func SlotTier(slot string) (string, domain.ContentTier, bool) {
	s := strings.ToLower(strings.TrimSpace(slot))
	m := videoSlotPattern.FindStringSubmatch(s)
	if m == nil {
		return "", "", false
	}
	return s, domain.ContentTier(m[1]), true
}

// MediaUserStore is the part of the user repository uploads touch.
type MediaUserStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	SetPhotoURL(ctx context.Context, username, photoType, url string) error
	AppendVideo(ctx context.Context, username string, v domain.Video) error
}

// Upload is one received file.
type Upload struct {
	Username    string
	Slot        string // photoType for photos, tier slot for videos
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

type MediaService struct {
	users MediaUserStore
	store storage.Storage
	audit *AuditService
	now   func() time.Time
}

func NewMediaService(users MediaUserStore, store storage.Storage, audit *AuditService) *MediaService {
	return &MediaService{
		users: users,
		store: store,
		audit: audit,
		now:   time.Now,
	}
}

// UploadPhoto stores a profile, cover or banner image and points the
// matching user column at it.
func (s *MediaService) UploadPhoto(ctx context.Context, up Upload) (string, error) {
	if _, ok := repository.PhotoColumns[up.Slot]; !ok {
		return "", fmt.Errorf("%w: photoType must be profile, cover or banner", ErrInvalidInput)
	}

	url, err := s.put(ctx, MediaPhoto, up, "photos")
	if err != nil {
		return "", err
	}

	if err := s.users.SetPhotoURL(ctx, up.Username, up.Slot, url); err != nil {
		metrics.Uploads.WithLabelValues(string(MediaPhoto), "error").Inc()
		return "", mapUserErr(err)
	}

	metrics.Uploads.WithLabelValues(string(MediaPhoto), "ok").Inc()
	s.audit.Log(ctx, 0, domain.AuditActionPhotoUpload, domain.AuditCategoryMedia, map[string]interface{}{
		"username":   up.Username,
		"photo_type": up.Slot,
		"url":        url,
	})
	return url, nil
}

// UploadVideo stores a video and appends it to the user's list with the
// tier its slot maps to.
func (s *MediaService) UploadVideo(ctx context.Context, up Upload) (*domain.Video, error) {
	slot, tier, ok := SlotTier(up.Slot)
	if !ok {
		return nil, fmt.Errorf("%w: slot must be free, silver or gold with an optional number", ErrInvalidInput)
	}
	up.Slot = slot

	url, err := s.put(ctx, MediaVideo, up, "videos")
	if err != nil {
		return nil, err
	}

	v := domain.Video{
		URL:        url,
		Tier:       tier,
		Slot:       up.Slot,
		IsSilver:   tier == domain.TierSilver,
		IsGold:     tier == domain.TierGold,
		UploadedAt: s.now().UTC(),
	}
	if err := s.users.AppendVideo(ctx, up.Username, v); err != nil {
		metrics.Uploads.WithLabelValues(string(MediaVideo), "error").Inc()
		return nil, mapUserErr(err)
	}

	metrics.Uploads.WithLabelValues(string(MediaVideo), "ok").Inc()
	s.audit.Log(ctx, 0, domain.AuditActionVideoUpload, domain.AuditCategoryMedia, map[string]interface{}{
		"username": up.Username,
		"slot":     up.Slot,
		"tier":     string(tier),
		"url":      url,
	})
	return &v, nil
}

func (s *MediaService) put(ctx context.Context, kind MediaKind, up Upload, folder string) (string, error) {
	up.Username = strings.TrimSpace(up.Username)
	if up.Username == "" || up.Body == nil {
		return "", fmt.Errorf("%w: username and file are required", ErrInvalidInput)
	}

	if _, err := ValidateUpload(kind, up.ContentType, up.Size); err != nil {
		metrics.Uploads.WithLabelValues(string(kind), "rejected").Inc()
		return "", err
	}

	detected, err := sniff(up.Body)
	if err != nil {
		return "", err
	}
	ext, err := ValidateUpload(kind, detected, up.Size)
	if err != nil {
		metrics.Uploads.WithLabelValues(string(kind), "rejected").Inc()
		return "", fmt.Errorf("%w: content is %s", ErrUnsupportedMedia, detected)
	}

	if _, err := s.users.GetByUsername(ctx, up.Username); err != nil {
		return "", mapUserErr(err)
	}

	key := fmt.Sprintf("%s/%s/%s-%s%s", up.Username, folder, up.Slot, uuid.NewString(), ext)
	url, err := s.store.Put(ctx, key, up.Body, up.Size, detected)
	if err != nil {
		metrics.Uploads.WithLabelValues(string(kind), "error").Inc()
		logger.WithContext(ctx).Error("media upload failed", "key", key, "error", err)
		return "", err
	}
	return url, nil
}

// sniff reads the head of body to find its real type and rewinds it.
func sniff(body io.ReadSeeker) (string, error) {
	m, err := mimetype.DetectReader(io.LimitReader(body, sniffLen))
	if err != nil {
		return "", err
	}
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return m.String(), nil
}

func mapUserErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
