package placement

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/google/uuid"
)

// Service places participants into capacity-bounded trees. Placement is
// idempotent and has no financial side effects; the only write is the
// TreeNode row.
type Service struct {
	trees        domain.TreeRepository
	participants domain.ParticipantRepository
	branching    int
	maxDepth     int
	rootFallback bool
}

func NewService(trees domain.TreeRepository, participants domain.ParticipantRepository, branching, maxDepth int, rootFallback bool) *Service {
	return &Service{
		trees:        trees,
		participants: participants,
		branching:    branching,
		maxDepth:     maxDepth,
		rootFallback: rootFallback,
	}
}

// PlaceInNetwork places the participant into the general referral tree
// under its sponsor, spilling over breadth-first when the sponsor is full.
// A participant without a sponsor becomes a new root. Replaying returns
// the existing node unchanged.
func (s *Service) PlaceInNetwork(ctx context.Context, participantID, sponsorID string) (*domain.TreeNode, error) {
	existing, err := s.trees.GetByParticipant(domain.TreeNetwork, "", participantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if sponsorID == "" {
		return s.createRoot(domain.TreeNetwork, "", participantID)
	}

	sponsorNode, err := s.trees.GetByParticipant(domain.TreeNetwork, "", sponsorID)
	if err != nil {
		return nil, err
	}
	if sponsorNode == nil {
		return nil, fmt.Errorf("sponsor %s has no network node: %w", sponsorID, domain.ErrParticipantNotFound)
	}

	parent, err := s.findSpilloverParent(sponsorNode)
	if err != nil {
		if err == domain.ErrCapacityExhausted && s.rootFallback {
			return s.createRoot(domain.TreeNetwork, "", participantID)
		}
		return nil, err
	}

	return s.attach(domain.TreeNetwork, "", parent, participantID)
}

// PlaceInClubMatrix places the participant into the sponsor's club matrix.
// The matrix differs from the general tree in its capacity rule: level L
// (the sponsor root being level 1) admits branching^(L-1) nodes in total
// under that sponsor, so placement targets the shallowest level with spare
// capacity and the earliest-created parent above it.
func (s *Service) PlaceInClubMatrix(ctx context.Context, participantID, sponsorID string) (*domain.TreeNode, error) {
	root, err := s.trees.GetByParticipant(domain.TreeClub, sponsorID, sponsorID)
	if err != nil {
		return nil, err
	}
	if root == nil {
		root, err = s.createRoot(domain.TreeClub, sponsorID, sponsorID)
		if err != nil {
			return nil, err
		}
	}
	if participantID == sponsorID {
		return root, nil
	}

	existing, err := s.trees.GetByParticipant(domain.TreeClub, sponsorID, participantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	parent, err := s.findMatrixParent(sponsorID)
	if err != nil {
		return nil, err
	}

	return s.attach(domain.TreeClub, sponsorID, parent, participantID)
}

// findSpilloverParent runs the breadth-first spillover search: dequeue a
// candidate, take it if it has a free slot, otherwise enqueue its children
// in slot order. Candidates deeper than maxDepth below the preferred root
// are never parents; exhausting the queue is a capacity error the caller
// must resolve by policy.
func (s *Service) findSpilloverParent(preferredRoot *domain.TreeNode) (*domain.TreeNode, error) {
	queue := []*domain.TreeNode{preferredRoot}
	visited := map[string]bool{preferredRoot.ID: true}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if node.Depth-preferredRoot.Depth >= s.maxDepth {
			continue
		}

		children, err := s.trees.Children(node.ID)
		if err != nil {
			return nil, err
		}
		if len(children) < s.branching {
			return node, nil
		}
		for _, child := range children {
			if !visited[child.ID] {
				visited[child.ID] = true
				queue = append(queue, child)
			}
		}
	}

	return nil, domain.ErrCapacityExhausted
}

// findMatrixParent finds the shallowest matrix level with spare systemwide
// capacity under the sponsor, then the earliest-created node one level
// above with a free slot.
func (s *Service) findMatrixParent(sponsorID string) (*domain.TreeNode, error) {
	capacity := int64(1)
	for depth := 1; depth <= s.maxDepth; depth++ {
		capacity *= int64(s.branching)
		count, err := s.trees.CountAtDepth(domain.TreeClub, sponsorID, depth)
		if err != nil {
			return nil, err
		}
		if count >= capacity {
			continue
		}

		nodes, err := s.trees.All(domain.TreeClub, sponsorID)
		if err != nil {
			return nil, err
		}
		for _, node := range nodes {
			if node.Depth != depth-1 {
				continue
			}
			childCount, err := s.trees.ChildCount(node.ID)
			if err != nil {
				return nil, err
			}
			if childCount < int64(s.branching) {
				return node, nil
			}
		}
	}

	return nil, domain.ErrCapacityExhausted
}

func (s *Service) createRoot(kind domain.TreeKind, rootID, participantID string) (*domain.TreeNode, error) {
	node := &domain.TreeNode{
		ID:            uuid.New().String(),
		Kind:          kind,
		RootID:        rootID,
		ParticipantID: participantID,
		Slot:          0,
		Path:          "/" + participantID + "/",
		Depth:         0,
		CreatedAt:     time.Now(),
	}
	if err := s.trees.Create(node); err != nil {
		if err == domain.ErrAlreadyPlaced {
			return s.trees.GetByParticipant(kind, rootID, participantID)
		}
		return nil, err
	}
	return node, nil
}

func (s *Service) attach(kind domain.TreeKind, rootID string, parent *domain.TreeNode, participantID string) (*domain.TreeNode, error) {
	children, err := s.trees.Children(parent.ID)
	if err != nil {
		return nil, err
	}
	slot := nextFreeSlot(children, s.branching)
	if slot == 0 {
		return nil, domain.ErrCapacityExhausted
	}

	node := &domain.TreeNode{
		ID:            uuid.New().String(),
		Kind:          kind,
		RootID:        rootID,
		ParticipantID: participantID,
		ParentID:      parent.ID,
		Slot:          slot,
		Path:          parent.Path + participantID + "/",
		Depth:         parent.Depth + 1,
		CreatedAt:     time.Now(),
	}
	if err := s.trees.Create(node); err != nil {
		// Concurrent placement of the same participant: keep the winner.
		if err == domain.ErrAlreadyPlaced {
			return s.trees.GetByParticipant(kind, rootID, participantID)
		}
		return nil, err
	}

	if kind == domain.TreeNetwork {
		if err := s.participants.UpdatePosition(participantID, slot); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func nextFreeSlot(children []*domain.TreeNode, branching int) int {
	taken := make(map[int]bool, len(children))
	for _, child := range children {
		taken[child.Slot] = true
	}
	for slot := 1; slot <= branching; slot++ {
		if !taken[slot] {
			return slot
		}
	}
	return 0
}
