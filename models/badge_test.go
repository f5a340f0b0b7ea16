package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestBadgeCatalogIsComplete(t *testing.T) {
	assert.Len(t, BadgeCatalog, 12)

	seen := make(map[string]bool)
	for _, b := range BadgeCatalog {
		assert.False(t, seen[b.ID], "duplicate badge id %s", b.ID)
		seen[b.ID] = true

		assert.NotEmpty(t, b.Name.EN, "badge %s missing english name", b.ID)
		assert.NotEmpty(t, b.Name.FR, "badge %s missing french name", b.ID)
		assert.NotEmpty(t, b.Description.EN, "badge %s missing english description", b.ID)
		assert.NotEmpty(t, b.Description.FR, "badge %s missing french description", b.ID)
		assert.NotEmpty(t, b.Rule.Kind, "badge %s missing rule kind", b.ID)
	}
}

func TestBadgeByID(t *testing.T) {
	b, ok := BadgeByID(BadgeHundredClub)
	require.True(t, ok)
	assert.Equal(t, RuleMinTotalPoints, b.Rule.Kind)
	assert.Equal(t, int64(100), b.Rule.Min)

	_, ok = BadgeByID("nope")
	assert.False(t, ok)
}

func TestLocalizedTextIn(t *testing.T) {
	text := LocalizedText{EN: "First Step", FR: "Premier Pas"}

	assert.Equal(t, "First Step", text.In(language.English))
	assert.Equal(t, "First Step", text.In(language.AmericanEnglish))
	assert.Equal(t, "Premier Pas", text.In(language.French))
	assert.Equal(t, "Premier Pas", text.In(language.CanadianFrench))
	// Anything unmatched falls back to English.
	assert.Equal(t, "First Step", text.In(language.Japanese))
}

func TestParsePath(t *testing.T) {
	p, err := ParsePath("WISDOM")
	require.NoError(t, err)
	assert.Equal(t, PathWisdom, p)

	_, err = ParsePath("wisdom")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestContributionIsReal(t *testing.T) {
	assert.True(t, Contribution{Path: PathWisdom, Amount: 5}.IsReal())
	assert.True(t, Contribution{Path: PathService, Hours: 1}.IsReal())
	assert.False(t, Contribution{Path: PathWisdom}.IsReal())
	assert.False(t, Contribution{Kind: KindReferralBonus, ImpactPoints: 10}.IsReal())
}

func TestSupporterDisplayName(t *testing.T) {
	assert.Equal(t, "Jo", Supporter{FullName: "Jo"}.DisplayName())
	assert.Equal(t, "Anonymous", Supporter{FullName: "Jo", IsAnonymous: true}.DisplayName())
	assert.Equal(t, "Anonymous", Supporter{}.DisplayName())
}
