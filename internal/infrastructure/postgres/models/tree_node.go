package models

import "time"

type TreeNodeModel struct {
	ID            string `gorm:"primaryKey;type:uuid"`
	Kind          string `gorm:"index:idx_tree_member,unique;index:idx_tree_depth"`
	RootID        string `gorm:"index:idx_tree_member,unique;index:idx_tree_depth"`
	ParticipantID string `gorm:"index:idx_tree_member,unique"`
	ParentID      string `gorm:"index"`
	Slot          int
	Path          string `gorm:"index"`
	Depth         int    `gorm:"index:idx_tree_depth"`
	CreatedAt     time.Time
}

func (TreeNodeModel) TableName() string {
	return "tree_nodes"
}
