package repository

import (
	"errors"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultParticipantRepository struct {
	db *gorm.DB
}

func NewDefaultParticipantRepository(db *gorm.DB) *DefaultParticipantRepository {
	return &DefaultParticipantRepository{db: db}
}

func (r *DefaultParticipantRepository) Create(participant *domain.Participant) error {
	return r.db.Create(mappers.ToGORMParticipant(participant)).Error
}

func (r *DefaultParticipantRepository) GetByID(participantID string) (*domain.Participant, error) {
	var participantModel models.ParticipantModel
	if err := r.db.First(&participantModel, "id = ?", participantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrParticipantNotFound
		}
		return nil, err
	}
	return mappers.ToDomainParticipant(&participantModel), nil
}

func (r *DefaultParticipantRepository) GetBySponsorID(sponsorID string) ([]*domain.Participant, error) {
	var participantModels []models.ParticipantModel
	if err := r.db.
		Where("sponsor_id = ?", sponsorID).
		Order("created_at ASC").
		Find(&participantModels).Error; err != nil {
		return nil, err
	}

	participants := make([]*domain.Participant, len(participantModels))
	for i := range participantModels {
		participants[i] = mappers.ToDomainParticipant(&participantModels[i])
	}
	return participants, nil
}

func (r *DefaultParticipantRepository) UpdatePosition(participantID string, position int) error {
	return r.db.Model(&models.ParticipantModel{}).
		Where("id = ?", participantID).
		Update("position", position).Error
}
