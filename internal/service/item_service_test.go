package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/apperr"
	"shareit/internal/clock"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newItemService(t *testing.T) (*ItemService, *mockRepo, *mockPublisher) {
	t.Helper()
	repo := new(mockRepo)
	pub := new(mockPublisher)
	logger := zerolog.Nop()
	return NewItemService(repo, clock.NewManual(testNow), pub, &logger), repo, pub
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestItemService_CreateItem(t *testing.T) {
	ctx := context.Background()
	owner := &models.User{ID: 1}

	t.Run("Success", func(t *testing.T) {
		s, repo, pub := newItemService(t)
		reqID := int64(7)
		repo.On("GetUserByID", ctx, int64(1)).Return(owner, nil)
		repo.On("GetRequestByID", ctx, int64(7)).Return(&models.ItemRequest{ID: 7}, nil)
		repo.On("CreateItem", ctx, mock.AnythingOfType("*models.Item")).
			Run(func(args mock.Arguments) { args.Get(1).(*models.Item).ID = 10 }).
			Return(nil)
		pub.On("PublishJSON", events.EventItemCreated, mock.Anything).Return(nil)

		item, err := s.CreateItem(ctx, &models.Item{Name: "Drill", Description: "Cordless", Available: true, RequestID: &reqID}, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(10), item.ID)
		assert.Equal(t, int64(1), item.OwnerID)
	})

	t.Run("UnknownOwner", func(t *testing.T) {
		s, repo, _ := newItemService(t)
		repo.On("GetUserByID", ctx, int64(1)).Return(nil, apperr.NotFoundf("user"))

		_, err := s.CreateItem(ctx, &models.Item{Name: "Drill", Description: "d"}, 1)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("UnknownRequest", func(t *testing.T) {
		s, repo, _ := newItemService(t)
		reqID := int64(7)
		repo.On("GetUserByID", ctx, int64(1)).Return(owner, nil)
		repo.On("GetRequestByID", ctx, int64(7)).Return(nil, apperr.NotFoundf("request"))

		_, err := s.CreateItem(ctx, &models.Item{Name: "Drill", Description: "d", RequestID: &reqID}, 1)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("BlankName", func(t *testing.T) {
		s, repo, _ := newItemService(t)
		repo.On("GetUserByID", ctx, int64(1)).Return(owner, nil)

		_, err := s.CreateItem(ctx, &models.Item{Name: "  ", Description: "d"}, 1)
		assert.ErrorIs(t, err, apperr.ErrBadRequest)
	})
}

func TestItemService_GetItemForViewer(t *testing.T) {
	ctx := context.Background()
	item := &models.Item{ID: 10, Name: "Tent", OwnerID: 1}
	comments := []*models.Comment{{ID: 2, ItemID: 10, Text: "newer"}, {ID: 1, ItemID: 10, Text: "older"}}
	early := &models.Booking{ID: 1, ItemID: 10, Start: testNow.Add(-72 * time.Hour), End: testNow.Add(-70 * time.Hour)}
	late := &models.Booking{ID: 2, ItemID: 10, Start: testNow.Add(24 * time.Hour), End: testNow.Add(96 * time.Hour)}
	middle := &models.Booking{ID: 3, ItemID: 10, Start: testNow.Add(-time.Hour), End: testNow.Add(time.Hour)}

	t.Run("Owner", func(t *testing.T) {
		s, repo, _ := newItemService(t)
		repo.On("GetItemByID", ctx, int64(10)).Return(item, nil)
		repo.On("GetCommentsByItemIDs", ctx, []int64{10}).Return(comments, nil)
		repo.On("GetBookingsByItemIDs", ctx, []int64{10}).Return([]*models.Booking{middle, late, early}, nil)

		d, err := s.GetItemForViewer(ctx, 10, 1)
		require.NoError(t, err)
		assert.Len(t, d.Comments, 2)
		assert.Equal(t, "newer", d.Comments[0].Text)
		require.NotNil(t, d.LastBooking)
		require.NotNil(t, d.NextBooking)
		assert.Equal(t, int64(1), d.LastBooking.ID)
		assert.Equal(t, int64(2), d.NextBooking.ID)
	})

	t.Run("Stranger", func(t *testing.T) {
		s, repo, _ := newItemService(t)
		repo.On("GetItemByID", ctx, int64(10)).Return(item, nil)
		repo.On("GetCommentsByItemIDs", ctx, []int64{10}).Return(comments, nil)

		d, err := s.GetItemForViewer(ctx, 10, 5)
		require.NoError(t, err)
		assert.Nil(t, d.LastBooking)
		assert.Nil(t, d.NextBooking)
		repo.AssertNotCalled(t, "GetBookingsByItemIDs", mock.Anything, mock.Anything)
	})

	t.Run("NotFound", func(t *testing.T) {
		s, repo, _ := newItemService(t)
		repo.On("GetItemByID", ctx, int64(10)).Return(nil, apperr.NotFoundf("item"))

		_, err := s.GetItemForViewer(ctx, 10, 1)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestItemService_ListOwnerItems(t *testing.T) {
	ctx := context.Background()
	page := models.MustPage(0, 10)
	s, repo, _ := newItemService(t)

	items := []*models.Item{{ID: 10, OwnerID: 1}, {ID: 11, OwnerID: 1}}
	repo.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1}, nil)
	repo.On("GetItemsByOwner", ctx, int64(1), page).Return(items, nil)
	repo.On("GetCommentsByItemIDs", ctx, []int64{10, 11}).Return([]*models.Comment{{ID: 1, ItemID: 11}}, nil)
	repo.On("GetBookingsByItemIDs", ctx, []int64{10, 11}).Return([]*models.Booking{{ID: 5, ItemID: 10, Start: testNow, End: testNow.Add(time.Hour)}}, nil)

	got, err := s.ListOwnerItems(ctx, 1, page)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Empty(t, got[0].Comments)
	assert.Equal(t, int64(5), got[0].LastBooking.ID)
	assert.Equal(t, int64(5), got[0].NextBooking.ID)
	assert.Len(t, got[1].Comments, 1)
	assert.Nil(t, got[1].LastBooking)
}

func TestItemService_UpdateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Partial", func(t *testing.T) {
		s, repo, _ := newItemService(t)
		repo.On("GetItemByID", ctx, int64(10)).Return(&models.Item{ID: 10, Name: "Old", Description: "Desc", Available: true, OwnerID: 1}, nil)
		repo.On("UpdateItem", ctx, mock.AnythingOfType("*models.Item")).Return(nil)

		item, err := s.UpdateItem(ctx, 10, 1, models.ItemPatch{Name: strPtr("New"), Available: boolPtr(false)})
		require.NoError(t, err)
		assert.Equal(t, "New", item.Name)
		assert.Equal(t, "Desc", item.Description)
		assert.False(t, item.Available)
	})

	t.Run("NotOwner", func(t *testing.T) {
		s, repo, _ := newItemService(t)
		repo.On("GetItemByID", ctx, int64(10)).Return(&models.Item{ID: 10, OwnerID: 1}, nil)

		_, err := s.UpdateItem(ctx, 10, 2, models.ItemPatch{Name: strPtr("New")})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		repo.AssertNotCalled(t, "UpdateItem", mock.Anything, mock.Anything)
	})
}

func TestItemService_SearchItems(t *testing.T) {
	ctx := context.Background()
	page := models.MustPage(0, 10)
	s, repo, _ := newItemService(t)

	got, err := s.SearchItems(ctx, "   ", page)
	require.NoError(t, err)
	assert.Empty(t, got)
	repo.AssertNotCalled(t, "SearchItems", mock.Anything, mock.Anything, mock.Anything)

	repo.On("SearchItems", ctx, "drill", page).Return([]*models.Item{{ID: 1}}, nil)
	got, err = s.SearchItems(ctx, "drill", page)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestItemService_CreateComment(t *testing.T) {
	ctx := context.Background()
	author := &models.User{ID: 2, Name: "Author"}

	t.Run("Success", func(t *testing.T) {
		s, repo, pub := newItemService(t)
		repo.On("HasFinishedBooking", ctx, int64(2), testNow).Return(true, nil)
		repo.On("GetUserByID", ctx, int64(2)).Return(author, nil)
		repo.On("GetItemByID", ctx, int64(10)).Return(&models.Item{ID: 10}, nil)
		repo.On("CreateComment", ctx, mock.AnythingOfType("*models.Comment")).Return(nil)
		pub.On("PublishJSON", events.EventCommentCreated, mock.Anything).Return(nil)

		c, err := s.CreateComment(ctx, 10, 2, "Nice")
		require.NoError(t, err)
		assert.Equal(t, "Author", c.AuthorName)
		assert.Equal(t, testNow, c.Created)
	})

	t.Run("NoFinishedBooking", func(t *testing.T) {
		s, repo, _ := newItemService(t)
		repo.On("HasFinishedBooking", ctx, int64(2), testNow).Return(false, nil)

		_, err := s.CreateComment(ctx, 10, 2, "Nice")
		assert.ErrorIs(t, err, apperr.ErrBadRequest)
		repo.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
	})

	t.Run("UnknownItem", func(t *testing.T) {
		s, repo, _ := newItemService(t)
		repo.On("HasFinishedBooking", ctx, int64(2), testNow).Return(true, nil)
		repo.On("GetUserByID", ctx, int64(2)).Return(author, nil)
		repo.On("GetItemByID", ctx, int64(10)).Return(nil, apperr.NotFoundf("item"))

		_, err := s.CreateComment(ctx, 10, 2, "Nice")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("BlankText", func(t *testing.T) {
		s, repo, _ := newItemService(t)
		repo.On("HasFinishedBooking", ctx, int64(2), testNow).Return(true, nil)
		repo.On("GetUserByID", ctx, int64(2)).Return(author, nil)
		repo.On("GetItemByID", ctx, int64(10)).Return(&models.Item{ID: 10}, nil)

		_, err := s.CreateComment(ctx, 10, 2, " ")
		assert.ErrorIs(t, err, apperr.ErrBadRequest)
	})
}
