package placement

import (
	"context"
	"fmt"
	"testing"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/repository"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func newTestService(t *testing.T, branching, maxDepth int, rootFallback bool) (*Service, domain.TreeRepository) {
	t.Helper()
	db := setupTestDB(t)
	trees := repository.NewDefaultTreeRepository(db)
	participants := repository.NewDefaultParticipantRepository(db)
	return NewService(trees, participants, branching, maxDepth, rootFallback), trees
}

func TestPlaceInNetworkRootAndDirectChildren(t *testing.T) {
	svc, _ := newTestService(t, 4, 10, false)
	ctx := context.Background()

	root, err := svc.PlaceInNetwork(ctx, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, 0, root.Depth)
	assert.Equal(t, "/alice/", root.Path)

	for i := 1; i <= 4; i++ {
		node, err := svc.PlaceInNetwork(ctx, fmt.Sprintf("child-%d", i), "alice")
		require.NoError(t, err)
		assert.Equal(t, root.ID, node.ParentID)
		assert.Equal(t, i, node.Slot)
		assert.Equal(t, 1, node.Depth)
	}
}

func TestPlaceInNetworkSpillsOverBreadthFirst(t *testing.T) {
	svc, _ := newTestService(t, 2, 10, false)
	ctx := context.Background()

	_, err := svc.PlaceInNetwork(ctx, "root", "")
	require.NoError(t, err)
	first, err := svc.PlaceInNetwork(ctx, "c1", "root")
	require.NoError(t, err)
	_, err = svc.PlaceInNetwork(ctx, "c2", "root")
	require.NoError(t, err)

	// Root is full now; the next join under root spills to c1, the
	// earliest child with a free slot.
	spilled, err := svc.PlaceInNetwork(ctx, "c3", "root")
	require.NoError(t, err)
	assert.Equal(t, first.ID, spilled.ParentID)
	assert.Equal(t, 2, spilled.Depth)
	assert.Equal(t, "/root/c1/c3/", spilled.Path)
}

func TestPlaceInNetworkIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t, 4, 10, false)
	ctx := context.Background()

	_, err := svc.PlaceInNetwork(ctx, "root", "")
	require.NoError(t, err)
	first, err := svc.PlaceInNetwork(ctx, "bob", "root")
	require.NoError(t, err)
	second, err := svc.PlaceInNetwork(ctx, "bob", "root")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestPlaceInNetworkUnknownSponsor(t *testing.T) {
	svc, _ := newTestService(t, 4, 10, false)
	_, err := svc.PlaceInNetwork(context.Background(), "bob", "ghost")
	assert.ErrorIs(t, err, domain.ErrParticipantNotFound)
}

func TestPlaceInNetworkCapacityExhausted(t *testing.T) {
	// branching 1, depth 1: root plus a single child is all the tree
	// below root can hold.
	svc, _ := newTestService(t, 1, 1, false)
	ctx := context.Background()

	_, err := svc.PlaceInNetwork(ctx, "root", "")
	require.NoError(t, err)
	_, err = svc.PlaceInNetwork(ctx, "only", "root")
	require.NoError(t, err)

	_, err = svc.PlaceInNetwork(ctx, "extra", "root")
	assert.ErrorIs(t, err, domain.ErrCapacityExhausted)
}

func TestPlaceInNetworkRootFallback(t *testing.T) {
	svc, _ := newTestService(t, 1, 1, true)
	ctx := context.Background()

	_, err := svc.PlaceInNetwork(ctx, "root", "")
	require.NoError(t, err)
	_, err = svc.PlaceInNetwork(ctx, "only", "root")
	require.NoError(t, err)

	node, err := svc.PlaceInNetwork(ctx, "extra", "root")
	require.NoError(t, err)
	assert.Equal(t, "", node.ParentID)
	assert.Equal(t, 0, node.Depth)
}

func TestPlaceInClubMatrixFillsLevelBeforeDescending(t *testing.T) {
	svc, _ := newTestService(t, 2, 10, false)
	ctx := context.Background()

	// Level 2 holds branching^1 = 2 nodes under the sponsor root.
	a, err := svc.PlaceInClubMatrix(ctx, "a", "sponsor")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Depth)
	b, err := svc.PlaceInClubMatrix(ctx, "b", "sponsor")
	require.NoError(t, err)
	assert.Equal(t, 1, b.Depth)

	// Level 2 full: the next joiner lands on level 3 under the earliest
	// level-2 node.
	c, err := svc.PlaceInClubMatrix(ctx, "c", "sponsor")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Depth)
	assert.Equal(t, a.ID, c.ParentID)
}

func TestPlaceInClubMatrixFifthJoinerUnderEarliestChild(t *testing.T) {
	svc, _ := newTestService(t, 4, 10, false)
	ctx := context.Background()

	var first *domain.TreeNode
	for i := 1; i <= 4; i++ {
		node, err := svc.PlaceInClubMatrix(ctx, fmt.Sprintf("m%d", i), "sponsor")
		require.NoError(t, err)
		require.Equal(t, 1, node.Depth)
		if i == 1 {
			first = node
		}
	}

	fifth, err := svc.PlaceInClubMatrix(ctx, "m5", "sponsor")
	require.NoError(t, err)
	assert.Equal(t, 2, fifth.Depth)
	assert.Equal(t, first.ID, fifth.ParentID)
}

func TestPlaceInClubMatrixPerSponsorTrees(t *testing.T) {
	svc, trees := newTestService(t, 4, 10, false)
	ctx := context.Background()

	// The same participant may occupy one club node per distinct sponsor.
	nodeA, err := svc.PlaceInClubMatrix(ctx, "bob", "sponsor-a")
	require.NoError(t, err)
	nodeB, err := svc.PlaceInClubMatrix(ctx, "bob", "sponsor-b")
	require.NoError(t, err)
	assert.NotEqual(t, nodeA.ID, nodeB.ID)

	got, err := trees.GetByParticipant(domain.TreeClub, "sponsor-a", "bob")
	require.NoError(t, err)
	assert.Equal(t, nodeA.ID, got.ID)
}

func TestPlaceInClubMatrixSponsorIsRoot(t *testing.T) {
	svc, _ := newTestService(t, 4, 10, false)
	ctx := context.Background()

	root, err := svc.PlaceInClubMatrix(ctx, "sponsor", "sponsor")
	require.NoError(t, err)
	assert.Equal(t, 0, root.Depth)

	again, err := svc.PlaceInClubMatrix(ctx, "sponsor", "sponsor")
	require.NoError(t, err)
	assert.Equal(t, root.ID, again.ID)
}

func TestRebuildPathsRepairsDrift(t *testing.T) {
	svc, trees := newTestService(t, 4, 10, false)
	ctx := context.Background()

	_, err := svc.PlaceInNetwork(ctx, "root", "")
	require.NoError(t, err)
	child, err := svc.PlaceInNetwork(ctx, "kid", "root")
	require.NoError(t, err)
	grand, err := svc.PlaceInNetwork(ctx, "grandkid", "kid")
	require.NoError(t, err)

	// Corrupt the derived columns; parent pointers stay authoritative.
	require.NoError(t, trees.UpdatePath(grand.ID, "/bogus/", 7))

	fixed, err := svc.RebuildPaths(ctx, domain.TreeNetwork, "")
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)

	repaired, err := trees.GetByID(grand.ID)
	require.NoError(t, err)
	assert.Equal(t, "/root/kid/grandkid/", repaired.Path)
	assert.Equal(t, 2, repaired.Depth)
	assert.Equal(t, child.ID, repaired.ParentID)
}
