package gcs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/fsouza/fake-gcs-server/fakestorage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"palmchat-backend/internal/models"
	"palmchat-backend/internal/store"
)

const testBucket = "historical-chat-object"

func newTestStore(t *testing.T) (*Store, *fakestorage.Server) {
	t.Helper()
	server := fakestorage.NewServer(nil)
	t.Cleanup(server.Stop)
	server.CreateBucketWithOpts(fakestorage.CreateBucketOpts{Name: testBucket})
	return NewStore(server.Client(), testBucket), server
}

func TestStore_LoadMissing(t *testing.T) {
	s, _ := newTestStore(t)

	record, err := s.Load(context.Background(), "100")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Nil(t, record)
}

func TestStore_SaveAndLoadRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	saved := &models.ConversationRecord{
		Metadata: "dummy_metadata_chat",
		History: []models.Message{
			{Role: models.RoleUser, Content: "hello"},
			{Role: models.RoleModel, Content: "hi there"},
		},
	}
	require.NoError(t, s.Save(ctx, "100", saved))

	loaded, err := s.Load(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestStore_BlobNamedAfterThread(t *testing.T) {
	s, server := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "1699999999.000100", &models.ConversationRecord{
		History: []models.Message{{Role: models.RoleUser, Content: "hello"}},
	}))

	obj, err := server.GetObject(testBucket, "1699999999.000100.json")
	require.NoError(t, err)

	var record models.ConversationRecord
	require.NoError(t, json.Unmarshal(obj.Content, &record))
	assert.Len(t, record.History, 1)
}

func TestStore_SaveOverwrites(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "100", &models.ConversationRecord{
		History: []models.Message{{Role: models.RoleUser, Content: "turn 1"}},
	}))
	require.NoError(t, s.Save(ctx, "100", &models.ConversationRecord{
		History: []models.Message{
			{Role: models.RoleUser, Content: "turn 1"},
			{Role: models.RoleModel, Content: "turn 2"},
		},
	}))

	loaded, err := s.Load(ctx, "100")
	require.NoError(t, err)
	assert.Len(t, loaded.History, 2)
}

func TestStore_ThreadsAreIndependent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "100", &models.ConversationRecord{
		History: []models.Message{{Role: models.RoleUser, Content: "thread 100"}},
	}))

	_, err := s.Load(ctx, "200")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
