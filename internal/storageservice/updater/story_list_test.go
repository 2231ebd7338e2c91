package updater

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
	"github.com/dmitrijs2005/storagesync/internal/storageservice/records"
)

var friendsListID = uuid.MustParse("44444444-4444-4444-8444-444444444444")

func TestStoryListUpdater_InvalidIdentifier(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	u := NewStoryDistributionListUpdater(f.deps(true))

	for _, id := range [][]byte{nil, {1, 2, 3}} {
		res, err := u.MergeRecord(ctx, &records.StoryDistributionList{Identifier: id, Name: proto.String("x")}, nil)
		require.NoError(t, err)
		assert.True(t, res.IsInvalid())

		rec, err := u.BuildRecord(ctx, id, nil, nil)
		require.NoError(t, err)
		assert.Nil(t, rec)
	}
}

func TestStoryListUpdater_CreateAndBuild(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	u := NewStoryDistributionListUpdater(f.deps(true))
	pni := uuid.New()

	in := &records.StoryDistributionList{
		Identifier:          friendsListID[:],
		Name:                proto.String("Friends"),
		RecipientServiceIDs: []string{bobACI.String(), "PNI:" + pni.String(), "bogus"},
		AllowsReplies:       true,
		UnknownFields:       []byte{0x38, 0x01},
	}
	res, err := u.MergeRecord(ctx, in, nil)
	require.NoError(t, err)
	assert.Equal(t, Merged(false, in.Identifier), res)

	list := f.storyLists[friendsListID]
	require.NotNil(t, list)
	assert.Equal(t, "Friends", list.Name)
	assert.Equal(t, []models.ServiceID{models.ACIServiceID(bobACI), models.PNIServiceID(pni)}, list.Members)

	out, err := u.BuildRecord(ctx, res.ID, in.UnknownFields, nil)
	require.NoError(t, err)
	assert.Equal(t, &records.StoryDistributionList{
		Identifier:          friendsListID[:],
		Name:                proto.String("Friends"),
		RecipientServiceIDs: []string{bobACI.String(), "PNI:" + pni.String()},
		AllowsReplies:       true,
		UnknownFields:       []byte{0x38, 0x01},
	}, out)
}

func TestStoryListUpdater_NewListWithoutNameIsInvalid(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	res, err := NewStoryDistributionListUpdater(f.deps(true)).MergeRecord(ctx, &records.StoryDistributionList{
		Identifier: friendsListID[:],
	}, nil)
	require.NoError(t, err)
	assert.True(t, res.IsInvalid())
	assert.Empty(t, f.storyLists)
}

func TestStoryListUpdater_TombstoneIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	f.storyLists[friendsListID] = &models.PrivateStoryList{ID: friendsListID, Name: "Friends"}
	u := NewStoryDistributionListUpdater(f.deps(true))

	rec := &records.StoryDistributionList{Identifier: friendsListID[:], DeletedAtTimestamp: 1000}
	for i := 0; i < 2; i++ {
		res, err := u.MergeRecord(ctx, rec, nil)
		require.NoError(t, err)
		assert.Equal(t, Merged(false, rec.Identifier), res)
		assert.NotContains(t, f.storyLists, friendsListID)
		assert.Equal(t, uint64(1000), f.tombstones[friendsListID])
	}

	out, err := u.BuildRecord(ctx, friendsListID[:], nil, nil)
	require.NoError(t, err)
	assert.Equal(t, &records.StoryDistributionList{Identifier: friendsListID[:], DeletedAtTimestamp: 1000}, out)
}

func TestStoryListUpdater_MergeExisting(t *testing.T) {
	ctx := context.Background()

	t.Run("same members in another order is not a change", func(t *testing.T) {
		f := newFakeStore()
		pni := uuid.New()
		f.storyLists[friendsListID] = &models.PrivateStoryList{
			ID: friendsListID, Name: "Friends",
			Members: []models.ServiceID{models.ACIServiceID(bobACI), models.PNIServiceID(pni)},
		}
		res, err := NewStoryDistributionListUpdater(f.deps(true)).MergeRecord(ctx, &records.StoryDistributionList{
			Identifier:          friendsListID[:],
			Name:                proto.String("Friends"),
			RecipientServiceIDs: []string{"PNI:" + pni.String(), bobACI.String()},
		}, nil)
		require.NoError(t, err)
		assert.False(t, res.NeedsUpdate)
		assert.False(t, f.wrote("UpdateStoryList"))
	})

	t.Run("block list mode and rename", func(t *testing.T) {
		f := newFakeStore()
		f.storyLists[friendsListID] = &models.PrivateStoryList{ID: friendsListID, Name: "Friends"}
		_, err := NewStoryDistributionListUpdater(f.deps(true)).MergeRecord(ctx, &records.StoryDistributionList{
			Identifier:    friendsListID[:],
			Name:          proto.String("Close friends"),
			IsBlockList:   true,
			AllowsReplies: true,
		}, nil)
		require.NoError(t, err)
		l := f.storyLists[friendsListID]
		assert.Equal(t, "Close friends", l.Name)
		assert.Equal(t, models.StoryListModeBlockList, l.Mode)
		assert.True(t, l.AllowsReplies)
	})

	t.Run("missing name needs update", func(t *testing.T) {
		f := newFakeStore()
		f.storyLists[friendsListID] = &models.PrivateStoryList{ID: friendsListID, Name: "Friends"}
		res, err := NewStoryDistributionListUpdater(f.deps(true)).MergeRecord(ctx, &records.StoryDistributionList{
			Identifier: friendsListID[:],
		}, nil)
		require.NoError(t, err)
		assert.True(t, res.NeedsUpdate)
		assert.Equal(t, "Friends", f.storyLists[friendsListID].Name)
	})

	t.Run("my story keeps its name", func(t *testing.T) {
		f := newFakeStore()
		f.storyLists[models.MyStoryID] = &models.PrivateStoryList{ID: models.MyStoryID, Name: models.MyStoryName, Mode: models.StoryListModeBlockList}
		res, err := NewStoryDistributionListUpdater(f.deps(true)).MergeRecord(ctx, &records.StoryDistributionList{
			Identifier:  models.MyStoryID[:],
			Name:        proto.String("Renamed"),
			IsBlockList: true,
		}, nil)
		require.NoError(t, err)
		assert.False(t, res.NeedsUpdate)
		assert.Equal(t, models.MyStoryName, f.storyLists[models.MyStoryID].Name)

		rec, err := NewStoryDistributionListUpdater(f.deps(true)).BuildRecord(ctx, models.MyStoryID[:], nil, nil)
		require.NoError(t, err)
		assert.Nil(t, rec.Name)
		assert.True(t, rec.IsBlockList)
	})
}
