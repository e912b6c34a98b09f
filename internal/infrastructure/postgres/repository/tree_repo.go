package repository

import (
	"errors"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultTreeRepository struct {
	db *gorm.DB
}

func NewDefaultTreeRepository(db *gorm.DB) *DefaultTreeRepository {
	return &DefaultTreeRepository{db: db}
}

func (r *DefaultTreeRepository) Create(node *domain.TreeNode) error {
	nodeModel := mappers.ToGORMTreeNode(node)
	if err := r.db.Create(nodeModel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadyPlaced
		}
		return err
	}
	return nil
}

func (r *DefaultTreeRepository) GetByID(nodeID string) (*domain.TreeNode, error) {
	var nodeModel models.TreeNodeModel
	if err := r.db.First(&nodeModel, "id = ?", nodeID).Error; err != nil {
		return nil, err
	}
	return mappers.ToDomainTreeNode(&nodeModel), nil
}

func (r *DefaultTreeRepository) GetByParticipant(kind domain.TreeKind, rootID, participantID string) (*domain.TreeNode, error) {
	var nodeModel models.TreeNodeModel
	err := r.db.
		Where("kind = ? AND root_id = ? AND participant_id = ?", string(kind), rootID, participantID).
		First(&nodeModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mappers.ToDomainTreeNode(&nodeModel), nil
}

func (r *DefaultTreeRepository) Children(nodeID string) ([]*domain.TreeNode, error) {
	var nodeModels []models.TreeNodeModel
	if err := r.db.
		Where("parent_id = ?", nodeID).
		Order("slot ASC").
		Find(&nodeModels).Error; err != nil {
		return nil, err
	}

	nodes := make([]*domain.TreeNode, len(nodeModels))
	for i := range nodeModels {
		nodes[i] = mappers.ToDomainTreeNode(&nodeModels[i])
	}
	return nodes, nil
}

func (r *DefaultTreeRepository) ChildCount(nodeID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.TreeNodeModel{}).
		Where("parent_id = ?", nodeID).
		Count(&count).Error
	return count, err
}

func (r *DefaultTreeRepository) CountAtDepth(kind domain.TreeKind, rootID string, depth int) (int64, error) {
	var count int64
	err := r.db.Model(&models.TreeNodeModel{}).
		Where("kind = ? AND root_id = ? AND depth = ?", string(kind), rootID, depth).
		Count(&count).Error
	return count, err
}

func (r *DefaultTreeRepository) Ancestors(nodeID string, maxDepth int) ([]*domain.TreeNode, error) {
	node, err := r.GetByID(nodeID)
	if err != nil {
		return nil, err
	}

	ancestors := make([]*domain.TreeNode, 0, maxDepth)
	parentID := node.ParentID
	for parentID != "" && len(ancestors) < maxDepth {
		parent, err := r.GetByID(parentID)
		if err != nil {
			return nil, err
		}
		ancestors = append(ancestors, parent)
		parentID = parent.ParentID
	}
	return ancestors, nil
}

func (r *DefaultTreeRepository) All(kind domain.TreeKind, rootID string) ([]*domain.TreeNode, error) {
	var nodeModels []models.TreeNodeModel
	if err := r.db.
		Where("kind = ? AND root_id = ?", string(kind), rootID).
		Order("created_at ASC").
		Find(&nodeModels).Error; err != nil {
		return nil, err
	}

	nodes := make([]*domain.TreeNode, len(nodeModels))
	for i := range nodeModels {
		nodes[i] = mappers.ToDomainTreeNode(&nodeModels[i])
	}
	return nodes, nil
}

func (r *DefaultTreeRepository) UpdatePath(nodeID, path string, depth int) error {
	return r.db.Model(&models.TreeNodeModel{}).
		Where("id = ?", nodeID).
		Updates(map[string]interface{}{"path": path, "depth": depth}).Error
}
