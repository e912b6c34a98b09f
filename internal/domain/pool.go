package domain

import "time"

// PoolEntry is one active slot in the auto-pool: its owner receives a
// percentage share of every pool distribution, keyed by (level, sub-level).
type PoolEntry struct {
	ID            string
	ParticipantID string
	PackageID     string
	Level         int
	SubLevel      int
	IsActive      bool
	CreatedAt     time.Time
}

type PoolRepository interface {
	Create(entry *PoolEntry) error
	// ActiveEntries returns active entries for the package ordered by
	// (level, sub_level, created_at).
	ActiveEntries(packageID string) ([]*PoolEntry, error)
}
