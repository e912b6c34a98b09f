package domain

import "time"

// TreeKind distinguishes the two tree instances a participant can occupy:
// the single general referral tree and the per-sponsor club matrix.
type TreeKind string

const (
	TreeNetwork TreeKind = "NETWORK"
	TreeClub    TreeKind = "CLUB"
)

// TreeNode is one participant's position in one tree instance. RootID is
// empty for the general tree and carries the sponsor id for club-matrix
// nodes, so one participant may hold one network node plus one club node
// per distinct sponsor.
//
// Path is a derived index over the parent-pointer chain ("/a/b/c/"). The
// parent pointers are authoritative; Path and Depth are recomputable via
// TreeService.RebuildPaths.
type TreeNode struct {
	ID            string
	Kind          TreeKind
	RootID        string
	ParticipantID string
	ParentID      string // empty for a tree root
	Slot          int    // 1..branching factor
	Path          string
	Depth         int
	CreatedAt     time.Time
}

type TreeRepository interface {
	Create(node *TreeNode) error
	GetByID(nodeID string) (*TreeNode, error)
	// GetByParticipant returns the participant's node for (kind, rootID),
	// or nil when the participant has not been placed there.
	GetByParticipant(kind TreeKind, rootID, participantID string) (*TreeNode, error)
	// Children returns direct children ordered by slot.
	Children(nodeID string) ([]*TreeNode, error)
	ChildCount(nodeID string) (int64, error)
	// CountAtDepth counts nodes of one tree instance at an exact depth.
	CountAtDepth(kind TreeKind, rootID string, depth int) (int64, error)
	// Ancestors walks parent pointers from the node upward, nearest first.
	Ancestors(nodeID string, maxDepth int) ([]*TreeNode, error)
	// All returns every node of one tree instance, oldest first.
	All(kind TreeKind, rootID string) ([]*TreeNode, error)
	UpdatePath(nodeID, path string, depth int) error
}
