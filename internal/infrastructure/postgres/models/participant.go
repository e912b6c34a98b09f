package models

import "time"

type ParticipantModel struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	SponsorID string `gorm:"index"`
	Position  int
	Status    string
	CreatedAt time.Time
}

func (ParticipantModel) TableName() string {
	return "participants"
}
