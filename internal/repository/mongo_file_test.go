package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/filedepot/filedepot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoFileRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewMongoFileRepository(db)
	ctx := context.Background()

	ownerID := primitive.NewObjectID().Hex()
	strangerID := primitive.NewObjectID().Hex()

	folder := &domain.File{
		UserID:   ownerID,
		Name:     "images",
		Type:     domain.TypeFolder,
		ParentID: domain.RootParent(),
	}
	require.NoError(t, repo.Create(ctx, folder))
	require.NotEmpty(t, folder.ID)

	file := &domain.File{
		UserID:    ownerID,
		Name:      "cat.png",
		Type:      domain.TypeImage,
		ParentID:  domain.FolderParent(folder.ID),
		LocalPath: "/tmp/files_manager/blob-1",
	}
	require.NoError(t, repo.Create(ctx, file))

	t.Run("GetByID", func(t *testing.T) {
		got, err := repo.GetByID(ctx, file.ID)
		require.NoError(t, err)
		assert.Equal(t, "cat.png", got.Name)
		assert.Equal(t, ownerID, got.UserID)
		assert.Equal(t, folder.ID, got.ParentID.ID())
		assert.Equal(t, "/tmp/files_manager/blob-1", got.LocalPath)

		_, err = repo.GetByID(ctx, "not-a-hex-id")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("RootParentRoundTrip", func(t *testing.T) {
		got, err := repo.GetByID(ctx, folder.ID)
		require.NoError(t, err)
		assert.True(t, got.ParentID.IsRoot())
		assert.Empty(t, got.LocalPath)
	})

	t.Run("GetOwned", func(t *testing.T) {
		got, err := repo.GetOwned(ctx, file.ID, ownerID)
		require.NoError(t, err)
		assert.Equal(t, file.ID, got.ID)

		_, err = repo.GetOwned(ctx, file.ID, strangerID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("CreateRejectsBadParent", func(t *testing.T) {
		bad := &domain.File{
			UserID:   ownerID,
			Name:     "orphan.txt",
			Type:     domain.TypeFile,
			ParentID: domain.FolderParent("42"),
		}
		assert.ErrorIs(t, repo.Create(ctx, bad), domain.ErrInvalidParent)
	})

	t.Run("ListByParent", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			child := &domain.File{
				UserID:    ownerID,
				Name:      fmt.Sprintf("doc-%d.txt", i),
				Type:      domain.TypeFile,
				ParentID:  domain.FolderParent(folder.ID),
				LocalPath: fmt.Sprintf("/tmp/files_manager/doc-%d", i),
			}
			require.NoError(t, repo.Create(ctx, child))
		}

		page, err := repo.ListByParent(ctx, ownerID, domain.FolderParent(folder.ID), 0, 20)
		require.NoError(t, err)
		require.Len(t, page, 6)
		// Insertion order: cat.png first, then the docs
		assert.Equal(t, "cat.png", page[0].Name)
		assert.Equal(t, "doc-0.txt", page[1].Name)

		page, err = repo.ListByParent(ctx, ownerID, domain.FolderParent(folder.ID), 4, 20)
		require.NoError(t, err)
		assert.Len(t, page, 2)

		root, err := repo.ListByParent(ctx, ownerID, domain.RootParent(), 0, 20)
		require.NoError(t, err)
		require.Len(t, root, 1)
		assert.Equal(t, "images", root[0].Name)

		// Other users see nothing, and an unparseable parent matches nothing
		empty, err := repo.ListByParent(ctx, strangerID, domain.FolderParent(folder.ID), 0, 20)
		require.NoError(t, err)
		assert.Empty(t, empty)

		empty, err = repo.ListByParent(ctx, ownerID, domain.FolderParent("garbage"), 0, 20)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("SetPublic", func(t *testing.T) {
		got, err := repo.SetPublic(ctx, file.ID, ownerID, true)
		require.NoError(t, err)
		assert.True(t, got.IsPublic)

		got, err = repo.SetPublic(ctx, file.ID, ownerID, false)
		require.NoError(t, err)
		assert.False(t, got.IsPublic)

		_, err = repo.SetPublic(ctx, file.ID, strangerID, true)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Count", func(t *testing.T) {
		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(7), n)
	})
}
