package domain

import "time"

type ParticipantStatus string

const (
	ParticipantActive  ParticipantStatus = "ACTIVE"
	ParticipantBlocked ParticipantStatus = "BLOCKED"
)

type Participant struct {
	ID        string
	SponsorID string // empty for network roots
	Position  int    // slot index in the general tree, set once by placement
	Status    ParticipantStatus
	CreatedAt time.Time
}

type ParticipantRepository interface {
	Create(participant *Participant) error
	GetByID(participantID string) (*Participant, error)
	GetBySponsorID(sponsorID string) ([]*Participant, error)
	UpdatePosition(participantID string, position int) error
}
