package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/eduflow/eduflow-server/internal/models"
	"github.com/eduflow/eduflow-server/internal/storage"
	"github.com/eduflow/eduflow-server/internal/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppStore_UpsertDeveloper(t *testing.T) {
	s := storagetest.NewAppStore(t)
	ctx := context.Background()

	first := storagetest.CreateDeveloper(t, s, "root", "first-password")
	require.NoError(t, s.SetDeveloperActive(ctx, first.ID, false))

	second := &models.Developer{Username: "root", PasswordHash: "$2a$new", DisplayName: "Root"}
	require.NoError(t, s.UpsertDeveloper(ctx, second))

	dev, err := s.GetDeveloperByUsername(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, first.ID, dev.ID)
	assert.Equal(t, "$2a$new", dev.PasswordHash)
	assert.Equal(t, "Root", dev.DisplayName)
	assert.True(t, dev.IsActive)
}

func TestAppStore_LookupsAndLogin(t *testing.T) {
	s := storagetest.NewAppStore(t)
	ctx := context.Background()
	dev := storagetest.CreateDeveloper(t, s, "root", "pw")

	byID, err := s.GetDeveloperByID(ctx, dev.ID)
	require.NoError(t, err)
	assert.Equal(t, "root", byID.Username)

	_, err = s.GetDeveloperByID(ctx, dev.ID+1)
	assert.ErrorIs(t, err, storage.ErrDeveloperNotFound)
	_, err = s.GetDeveloperByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, storage.ErrDeveloperNotFound)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.RecordDeveloperLogin(ctx, dev.ID, at))
	byID, err = s.GetDeveloperByID(ctx, dev.ID)
	require.NoError(t, err)
	require.NotNil(t, byID.LastLogin)
	assert.True(t, at.Equal(*byID.LastLogin))

	assert.ErrorIs(t, s.SetDeveloperActive(ctx, 999, true), storage.ErrDeveloperNotFound)
	assert.NoError(t, s.Ping(ctx))
}
