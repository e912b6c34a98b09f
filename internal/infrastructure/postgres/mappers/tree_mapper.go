package mappers

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
)

func ToGORMTreeNode(node *domain.TreeNode) *models.TreeNodeModel {
	return &models.TreeNodeModel{
		ID:            node.ID,
		Kind:          string(node.Kind),
		RootID:        node.RootID,
		ParticipantID: node.ParticipantID,
		ParentID:      node.ParentID,
		Slot:          node.Slot,
		Path:          node.Path,
		Depth:         node.Depth,
		CreatedAt:     node.CreatedAt,
	}
}

func ToDomainTreeNode(model *models.TreeNodeModel) *domain.TreeNode {
	return &domain.TreeNode{
		ID:            model.ID,
		Kind:          domain.TreeKind(model.Kind),
		RootID:        model.RootID,
		ParticipantID: model.ParticipantID,
		ParentID:      model.ParentID,
		Slot:          model.Slot,
		Path:          model.Path,
		Depth:         model.Depth,
		CreatedAt:     model.CreatedAt,
	}
}

func ToGORMParticipant(p *domain.Participant) *models.ParticipantModel {
	return &models.ParticipantModel{
		ID:        p.ID,
		SponsorID: p.SponsorID,
		Position:  p.Position,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
	}
}

func ToDomainParticipant(model *models.ParticipantModel) *domain.Participant {
	return &domain.Participant{
		ID:        model.ID,
		SponsorID: model.SponsorID,
		Position:  model.Position,
		Status:    domain.ParticipantStatus(model.Status),
		CreatedAt: model.CreatedAt,
	}
}
