package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanAccess(t *testing.T) {
	free := Membership{Tier: MembershipFree}
	silver := Membership{Tier: MembershipSilver}
	silverPlus := Membership{Tier: MembershipFree, SilverPlusActive: true}
	gold := Membership{Tier: MembershipGold}
	diamond := Membership{Tier: MembershipFree, DiamondPlusActive: true}

	cases := []struct {
		name string
		tier ContentTier
		m    Membership
		want bool
	}{
		{"free content, free user", TierFree, free, true},
		{"silver content, free user", TierSilver, free, false},
		{"silver content, silver tier", TierSilver, silver, true},
		{"silver content, silver plus", TierSilver, silverPlus, true},
		{"silver content, diamond plus only", TierSilver, diamond, false},
		{"gold content, gold tier without diamond", TierGold, gold, false},
		{"gold content, silver plus", TierGold, silverPlus, false},
		{"gold content, diamond plus", TierGold, diamond, true},
		{"unknown tier", ContentTier("platinum"), diamond, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, CanAccess(tc.tier, tc.m))
		})
	}
}

func TestDecideAttachesUpsell(t *testing.T) {
	d := Decide(TierGold, Membership{Tier: MembershipSilver})
	require.False(t, d.Allowed)
	require.NotNil(t, d.Upsell)
	require.Equal(t, "/upgrade/diamond-plus", d.Upsell.Route)

	d = Decide(TierSilver, Membership{SilverPlusActive: true})
	require.True(t, d.Allowed)
	require.Nil(t, d.Upsell)

	_, ok := UpsellFor(TierFree)
	require.False(t, ok)
}

func TestParseContentTier(t *testing.T) {
	tier, ok := ParseContentTier("silver")
	require.True(t, ok)
	require.Equal(t, TierSilver, tier)

	_, ok = ParseContentTier("SILVER")
	require.False(t, ok)
}

func TestVisibleVideos(t *testing.T) {
	videos := []Video{
		{URL: "a", Tier: TierFree},
		{URL: "b", Tier: TierSilver},
		{URL: "c", Tier: TierGold},
	}

	got := VisibleVideos(videos, Membership{SilverPlusActive: true})
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].URL)
	require.Equal(t, "b", got[1].URL)

	require.NotNil(t, VisibleVideos(nil, Membership{}))
}
