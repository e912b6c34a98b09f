package rules

import (
	"testing"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRuleRepo keeps rules in memory and counts Candidates calls so the
// cache behaviour is observable.
type fakeRuleRepo struct {
	rules []*domain.CommissionRule
	calls int
}

func (f *fakeRuleRepo) Create(rule *domain.CommissionRule) error {
	copied := *rule
	f.rules = append(f.rules, &copied)
	return nil
}

func (f *fakeRuleRepo) Candidates(category domain.IncomeCategory, packageID string, level, subLevel int) ([]*domain.CommissionRule, error) {
	f.calls++
	var out []*domain.CommissionRule
	for _, rule := range f.rules {
		if rule.Category != category || rule.Level != level || rule.SubLevel != subLevel {
			continue
		}
		if rule.PackageID != packageID && rule.PackageID != "" {
			continue
		}
		out = append(out, rule)
	}
	return out, nil
}

func (f *fakeRuleRepo) Deactivate(category domain.IncomeCategory, packageID string, level, subLevel int) error {
	for _, rule := range f.rules {
		if rule.Category == category && rule.PackageID == packageID &&
			rule.Level == level && rule.SubLevel == subLevel {
			rule.IsActive = false
		}
	}
	return nil
}

func percentRule(category domain.IncomeCategory, packageID string, level, version int, value string) *domain.CommissionRule {
	return &domain.CommissionRule{
		ID:        packageID + "-" + value,
		Category:  category,
		PackageID: packageID,
		Level:     level,
		Kind:      domain.AmountPercent,
		Value:     decimal.RequireFromString(value),
		IsActive:  true,
		Version:   version,
	}
}

func TestResolvePrefersExactPackageOverGlobal(t *testing.T) {
	repo := &fakeRuleRepo{rules: []*domain.CommissionRule{
		percentRule(domain.CategoryFasttrack, "", 0, 5, "8"),
		percentRule(domain.CategoryFasttrack, "pkg-gold", 0, 1, "10"),
	}}
	resolver := NewResolver(repo, time.Minute)

	rule, err := resolver.Resolve(domain.CategoryFasttrack, "pkg-gold", 0, 0, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "pkg-gold", rule.PackageID)
	assert.True(t, decimal.NewFromInt(10).Equal(rule.Value))
}

func TestResolveFallsBackToGlobal(t *testing.T) {
	repo := &fakeRuleRepo{rules: []*domain.CommissionRule{
		percentRule(domain.CategoryFasttrack, "", 0, 1, "8"),
	}}
	resolver := NewResolver(repo, time.Minute)

	rule, err := resolver.Resolve(domain.CategoryFasttrack, "pkg-gold", 0, 0, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "", rule.PackageID)
}

func TestResolvePicksHighestVersion(t *testing.T) {
	repo := &fakeRuleRepo{rules: []*domain.CommissionRule{
		percentRule(domain.CategoryLevel, "pkg", 1, 1, "3"),
		percentRule(domain.CategoryLevel, "pkg", 1, 2, "4"),
	}}
	resolver := NewResolver(repo, time.Minute)

	rule, err := resolver.Resolve(domain.CategoryLevel, "pkg", 1, 0, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, rule.Version)
}

func TestResolveHonoursEffectiveWindow(t *testing.T) {
	now := time.Now()
	past := now.Add(-2 * time.Hour)
	cutoff := now.Add(-time.Hour)

	expired := percentRule(domain.CategoryLevel, "pkg", 1, 1, "3")
	expired.EffectiveFrom = &past
	expired.EffectiveTo = &cutoff

	repo := &fakeRuleRepo{rules: []*domain.CommissionRule{expired}}
	resolver := NewResolver(repo, time.Minute)

	_, err := resolver.Resolve(domain.CategoryLevel, "pkg", 1, 0, now)
	assert.ErrorIs(t, err, domain.ErrRuleNotFound)

	rule, err := resolver.Resolve(domain.CategoryLevel, "pkg", 1, 0, cutoff.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, rule.Version)
}

func TestResolveIgnoresInactive(t *testing.T) {
	inactive := percentRule(domain.CategoryClub, "pkg", 2, 1, "5")
	inactive.IsActive = false
	repo := &fakeRuleRepo{rules: []*domain.CommissionRule{inactive}}
	resolver := NewResolver(repo, time.Minute)

	_, err := resolver.Resolve(domain.CategoryClub, "pkg", 2, 0, time.Now())
	assert.ErrorIs(t, err, domain.ErrRuleNotFound)
}

func TestResolveCachesCandidates(t *testing.T) {
	repo := &fakeRuleRepo{rules: []*domain.CommissionRule{
		percentRule(domain.CategoryFasttrack, "pkg", 0, 1, "10"),
	}}
	resolver := NewResolver(repo, time.Minute)

	_, err := resolver.Resolve(domain.CategoryFasttrack, "pkg", 0, 0, time.Now())
	require.NoError(t, err)
	_, err = resolver.Resolve(domain.CategoryFasttrack, "pkg", 0, 0, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)

	resolver.Invalidate()
	_, err = resolver.Resolve(domain.CategoryFasttrack, "pkg", 0, 0, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestAppendSupersedesCurrentVersion(t *testing.T) {
	repo := &fakeRuleRepo{}
	resolver := NewResolver(repo, time.Minute)

	first := percentRule(domain.CategoryFasttrack, "pkg", 0, 0, "10")
	first.ID = ""
	require.NoError(t, resolver.Append(first))
	assert.Equal(t, 1, first.Version)
	assert.NotEmpty(t, first.ID)

	second := percentRule(domain.CategoryFasttrack, "pkg", 0, 0, "12")
	second.ID = ""
	require.NoError(t, resolver.Append(second))
	assert.Equal(t, 2, second.Version)

	// The old version is deactivated, the new one resolves.
	rule, err := resolver.Resolve(domain.CategoryFasttrack, "pkg", 0, 0, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, rule.Version)
	assert.True(t, decimal.NewFromInt(12).Equal(rule.Value))
}

func TestAppendRejectsUnknownCategory(t *testing.T) {
	resolver := NewResolver(&fakeRuleRepo{}, time.Minute)
	err := resolver.Append(&domain.CommissionRule{Category: "BONUS"})
	assert.Error(t, err)
}
