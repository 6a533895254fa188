package handlers

import (
	"errors"
	"net/http"

	"membership_webapp/internal/domain"
	"membership_webapp/internal/http/middleware"
	"membership_webapp/internal/repository"
	"membership_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

// ContentAccess evaluates the tier gate for the signed-in user.
func (h *Handler) ContentAccess(c *gin.Context) {
	tier, ok := domain.ParseContentTier(c.Query("tier"))
	if !ok {
		respondError(c, http.StatusBadRequest, "tier must be free, silver or gold")
		return
	}

	m, err := h.viewerMembership(c)
	if err != nil {
		respondServiceError(c, err, "failed to load membership")
		return
	}

	c.JSON(http.StatusOK, domain.Decide(tier, m))
}

// UserVideos lists a user's videos the viewer may watch. Locked tiers
// come back as upsell cards instead of URLs.
func (h *Handler) UserVideos(c *gin.Context) {
	owner, err := h.Users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "user not found")
			return
		}
		respondServiceError(c, err, "failed to load videos")
		return
	}

	m, err := h.viewerMembership(c)
	if err != nil {
		respondServiceError(c, err, "failed to load membership")
		return
	}

	locked := make([]domain.AccessDecision, 0, 2)
	for _, tier := range []domain.ContentTier{domain.TierSilver, domain.TierGold} {
		if d := domain.Decide(tier, m); !d.Allowed && hasTier(owner.Videos, tier) {
			locked = append(locked, d)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"username": owner.Username,
		"videos":   domain.VisibleVideos(owner.Videos, m),
		"locked":   locked,
	})
}

// viewerMembership is the free tier for anonymous viewers.
func (h *Handler) viewerMembership(c *gin.Context) (domain.Membership, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return domain.Membership{Tier: domain.MembershipFree}, nil
	}
	u, err := h.Auth.Me(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return domain.Membership{}, service.ErrSessionExpired
		}
		return domain.Membership{}, err
	}
	return u.Membership(), nil
}

func hasTier(videos []domain.Video, tier domain.ContentTier) bool {
	for _, v := range videos {
		if v.Tier == tier {
			return true
		}
	}
	return false
}
