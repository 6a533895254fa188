package domain

// ContentTier gates a piece of content.
type ContentTier string

const (
	TierFree   ContentTier = "free"
	TierSilver ContentTier = "silver"
	TierGold   ContentTier = "gold"
)

// ParseContentTier returns the tier for s and whether it is known.
func ParseContentTier(s string) (ContentTier, bool) {
	switch ContentTier(s) {
	case TierFree, TierSilver, TierGold:
		return ContentTier(s), true
	}
	return "", false
}

// Membership is the subset of user state the gate looks at.
type Membership struct {
	Tier              MembershipTier `json:"membership_tier"`
	SilverPlusActive  bool           `json:"silver_plus_active"`
	DiamondPlusActive bool           `json:"diamond_plus_active"`
}

// CanAccess reports whether m may view content of the given tier.
// Gold is unlocked by Diamond Plus only, whatever the other flags say.
func CanAccess(tier ContentTier, m Membership) bool {
	switch tier {
	case TierFree:
		return true
	case TierSilver:
		return m.SilverPlusActive || m.Tier == MembershipSilver
	case TierGold:
		return m.DiamondPlusActive
	default:
		return false
	}
}

// Upsell is the fixed card shown instead of gated content.
type Upsell struct {
	Title       string `json:"title"`
	Message     string `json:"message"`
	ActionLabel string `json:"action_label"`
	Route       string `json:"route"`
}

var upsells = map[ContentTier]Upsell{
	TierSilver: {
		Title:       "Silver Plus content",
		Message:     "Upgrade to Silver Plus to unlock this content.",
		ActionLabel: "Get Silver Plus",
		Route:       "/upgrade/silver-plus",
	},
	TierGold: {
		Title:       "Diamond Plus content",
		Message:     "Upgrade to Diamond Plus to unlock this content.",
		ActionLabel: "Get Diamond Plus",
		Route:       "/upgrade/diamond-plus",
	},
}

// UpsellFor returns the upgrade card for a tier. Free content has none.
func UpsellFor(tier ContentTier) (Upsell, bool) {
	u, ok := upsells[tier]
	return u, ok
}

// AccessDecision is the outcome of evaluating the gate for one tier.
type AccessDecision struct {
	Tier    ContentTier `json:"tier"`
	Allowed bool        `json:"allowed"`
	Upsell  *Upsell     `json:"upsell,omitempty"`
}

// Decide evaluates the gate and attaches the upsell card when denied.
func Decide(tier ContentTier, m Membership) AccessDecision {
	d := AccessDecision{Tier: tier, Allowed: CanAccess(tier, m)}
	if !d.Allowed {
		if u, ok := UpsellFor(tier); ok {
			d.Upsell = &u
		}
	}
	return d
}

// VisibleVideos filters videos down to what m is allowed to see.
func VisibleVideos(videos []Video, m Membership) []Video {
	out := make([]Video, 0, len(videos))
	for _, v := range videos {
		if CanAccess(v.Tier, m) {
			out = append(out, v)
		}
	}
	return out
}
