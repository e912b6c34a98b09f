package rules

import (
	"fmt"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/google/uuid"
)

// Resolver picks the single effective rule for a commission query. A miss
// is a valid outcome (ErrRuleNotFound), not a failure: callers distribute
// zero.
type Resolver struct {
	repo  domain.RuleRepository
	cache *candidateCache
}

func NewResolver(repo domain.RuleRepository, cacheTTL time.Duration) *Resolver {
	return &Resolver{
		repo:  repo,
		cache: newCandidateCache(cacheTTL),
	}
}

// Resolve returns the active rule effective at the instant for the tuple.
// Preference order: exact package match over global fallback, then
// highest version.
func (r *Resolver) Resolve(category domain.IncomeCategory, packageID string, level, subLevel int, at time.Time) (*domain.CommissionRule, error) {
	candidates, err := r.candidates(category, packageID, level, subLevel)
	if err != nil {
		return nil, err
	}

	var best *domain.CommissionRule
	for _, rule := range candidates {
		if !rule.IsActive || !rule.EffectiveAt(at) {
			continue
		}
		if best == nil || betterMatch(rule, best, packageID) {
			best = rule
		}
	}
	if best == nil {
		return nil, domain.ErrRuleNotFound
	}
	return best, nil
}

// Append supersedes the tuple's current version: the old versions are
// deactivated, never mutated, and the cache is invalidated.
func (r *Resolver) Append(rule *domain.CommissionRule) error {
	if !rule.Category.Valid() {
		return fmt.Errorf("invalid income category %q", rule.Category)
	}

	current, err := r.repo.Candidates(rule.Category, rule.PackageID, rule.Level, rule.SubLevel)
	if err != nil {
		return err
	}
	version := 1
	for _, existing := range current {
		if existing.PackageID == rule.PackageID && existing.Version >= version {
			version = existing.Version + 1
		}
	}

	if err := r.repo.Deactivate(rule.Category, rule.PackageID, rule.Level, rule.SubLevel); err != nil {
		return err
	}

	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	rule.Version = version
	rule.IsActive = true
	rule.CreatedAt = time.Now()
	if err := r.repo.Create(rule); err != nil {
		return err
	}

	r.Invalidate()
	return nil
}

// Invalidate drops every cached candidate list; call after any rule
// mutation.
func (r *Resolver) Invalidate() {
	r.cache.clear()
}

func (r *Resolver) candidates(category domain.IncomeCategory, packageID string, level, subLevel int) ([]*domain.CommissionRule, error) {
	key := fmt.Sprintf("%s|%s|%d|%d", category, packageID, level, subLevel)
	if cached, ok := r.cache.get(key); ok {
		return cached, nil
	}

	candidates, err := r.repo.Candidates(category, packageID, level, subLevel)
	if err != nil {
		return nil, err
	}
	r.cache.put(key, candidates)
	return candidates, nil
}

func betterMatch(candidate, current *domain.CommissionRule, packageID string) bool {
	candidateExact := packageID != "" && candidate.PackageID == packageID
	currentExact := packageID != "" && current.PackageID == packageID
	if candidateExact != currentExact {
		return candidateExact
	}
	return candidate.Version > current.Version
}
