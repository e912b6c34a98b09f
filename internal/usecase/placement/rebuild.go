package placement

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

// RebuildPaths recomputes every node's materialized path and depth from
// the parent-pointer chain, which is the authoritative structure, and
// rewrites rows that differ. Returns the number of corrected nodes.
func (s *Service) RebuildPaths(ctx context.Context, kind domain.TreeKind, rootID string) (int, error) {
	nodes, err := s.trees.All(kind, rootID)
	if err != nil {
		return 0, err
	}

	byID := make(map[string]*domain.TreeNode, len(nodes))
	for _, node := range nodes {
		byID[node.ID] = node
	}

	fixed := 0
	for _, node := range nodes {
		path, depth, err := derivePath(node, byID)
		if err != nil {
			return fixed, err
		}
		if node.Path == path && node.Depth == depth {
			continue
		}
		if err := s.trees.UpdatePath(node.ID, path, depth); err != nil {
			return fixed, err
		}
		fixed++
	}
	return fixed, nil
}

func derivePath(node *domain.TreeNode, byID map[string]*domain.TreeNode) (string, int, error) {
	segments := []string{node.ParticipantID}
	depth := 0
	seen := map[string]bool{node.ID: true}

	current := node
	for current.ParentID != "" {
		parent, ok := byID[current.ParentID]
		if !ok {
			return "", 0, fmt.Errorf("node %s references missing parent %s", current.ID, current.ParentID)
		}
		if seen[parent.ID] {
			return "", 0, fmt.Errorf("parent cycle at node %s", parent.ID)
		}
		seen[parent.ID] = true
		segments = append(segments, parent.ParticipantID)
		depth++
		current = parent
	}

	path := "/"
	for i := len(segments) - 1; i >= 0; i-- {
		path += segments[i] + "/"
	}
	return path, depth, nil
}
