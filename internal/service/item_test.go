package service

import (
	"context"
	"net/http"
	"testing"

	"rewear/internal/core"
	"rewear/internal/database/mongodb/model"
	"rewear/internal/dto"
	"rewear/internal/media"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newItemRequest(title string) *dto.CreateItemRequest {
	return &dto.CreateItemRequest{
		Title:          title,
		Description:    "Barely worn",
		Category:       core.CategoryTops,
		Type:           "Shirt",
		Size:           core.SizeM,
		Condition:      core.ConditionGood,
		Tags:           []string{"cotton", " "},
		PointsRequired: 20,
	}
}

func TestBuildListFilter(t *testing.T) {
	tests := []struct {
		name         string
		query        dto.ItemListQuery
		isAdmin      bool
		wantStatus   *core.ItemStatus
		wantApproved *bool
		wantErr      bool
	}{
		{name: "defaults", wantStatus: ptr(core.ItemStatusAvailable), wantApproved: ptr(true)},
		{name: "empty status disables filter", query: dto.ItemListQuery{Status: ptr("")}, wantApproved: ptr(true)},
		{name: "explicit status", query: dto.ItemListQuery{Status: ptr("swapped")}, wantStatus: ptr(core.ItemStatusSwapped), wantApproved: ptr(true)},
		{name: "invalid status", query: dto.ItemListQuery{Status: ptr("shipped")}, wantErr: true},
		{name: "non admin cannot see unapproved", query: dto.ItemListQuery{Approved: ptr("false")}, wantStatus: ptr(core.ItemStatusAvailable), wantApproved: ptr(true)},
		{name: "admin unapproved", query: dto.ItemListQuery{Status: ptr("pending"), Approved: ptr("false")}, isAdmin: true, wantStatus: ptr(core.ItemStatusPending), wantApproved: ptr(false)},
		{name: "admin no approval filter", query: dto.ItemListQuery{Approved: ptr("")}, isAdmin: true, wantStatus: ptr(core.ItemStatusAvailable)},
		{name: "invalid approved", query: dto.ItemListQuery{Approved: ptr("maybe")}, isAdmin: true, wantErr: true},
		{name: "invalid category", query: dto.ItemListQuery{Category: ptr("Hats")}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := BuildListFilter(tt.query, tt.isAdmin)
			if tt.wantErr {
				requireAppErr(t, err, http.StatusBadRequest, "")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, filter.Status)
			assert.Equal(t, tt.wantApproved, filter.Approved)
		})
	}
}

func TestCreateItem_StartsPendingWithUploads(t *testing.T) {
	f := newFixture(t, true)
	owner := f.mem.SeedUser("Alice", core.RoleUser, 50)

	files := []media.File{{Name: "a.jpg"}, {Name: "b.jpg"}}
	resp, err := f.items.CreateItem(context.Background(), owner, newItemRequest("Denim"), files)
	require.NoError(t, err)

	assert.Equal(t, core.ItemStatusPending, resp.Status)
	assert.False(t, resp.Approved)
	assert.Equal(t, "Alice", resp.UploaderName)
	assert.Equal(t, []string{"cotton"}, resp.Tags)
	require.Len(t, resp.Images, 2)
	assert.Equal(t, "https://media.test/"+f.media.Uploaded[0], resp.Images[0])
	assert.Len(t, resp.ImagePublicIDs, 2)
}

func TestCreateItem_UploadFailureRollsBack(t *testing.T) {
	f := newFixture(t, true)
	owner := f.mem.SeedUser("Alice", core.RoleUser, 50)
	f.media.FailAfter = 1

	files := []media.File{{Name: "a.jpg"}, {Name: "b.jpg"}}
	_, err := f.items.CreateItem(context.Background(), owner, newItemRequest("Denim"), files)
	requireAppErr(t, err, http.StatusBadGateway, "Image upload failed")

	assert.Equal(t, f.media.Uploaded, f.media.Deleted)
	items, err := f.mem.Items().List(context.Background(), f.ownerFilter(owner.ID))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCreateItem_InvalidImage(t *testing.T) {
	f := newFixture(t, true)
	owner := f.mem.SeedUser("Alice", core.RoleUser, 50)
	f.media.FailAfter = 0
	f.media.FailErr = media.ErrInvalidImage

	_, err := f.items.CreateItem(context.Background(), owner, newItemRequest("Denim"), []media.File{{Name: "doc.pdf"}})
	requireAppErr(t, err, http.StatusBadRequest, "Invalid image file: doc.pdf")
}

func TestCreateItem_DatabaseFailureDeletesUploads(t *testing.T) {
	f := newFixture(t, true)
	owner := f.mem.SeedUser("Alice", core.RoleUser, 50)
	f.mem.FailOnce("items.Create", assert.AnError)

	_, err := f.items.CreateItem(context.Background(), owner, newItemRequest("Denim"), []media.File{{Name: "a.jpg"}})
	requireAppErr(t, err, http.StatusInternalServerError, "")
	assert.Equal(t, f.media.Uploaded, f.media.Deleted)
}

func TestUploadImages(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.items.UploadImages(context.Background(), nil)
	requireAppErr(t, err, http.StatusBadRequest, "No images uploaded")

	urls, err := f.items.UploadImages(context.Background(), []media.File{{Name: "a.jpg"}})
	require.NoError(t, err)
	assert.Len(t, urls, 1)

	tooMany := make([]media.File, 6)
	_, err = f.items.UploadImages(context.Background(), tooMany)
	requireAppErr(t, err, http.StatusBadRequest, "")
}

func TestListItems_HidesUnapproved(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	owner := f.mem.SeedUser("Alice", core.RoleUser, 50)
	admin := f.mem.SeedUser("Admin", core.RoleAdmin, 0)
	visible := f.mem.SeedItem(owner, "Visible", 10, core.ItemStatusAvailable, true)
	f.mem.SeedItem(owner, "Hidden", 10, core.ItemStatusPending, false)
	f.mem.SeedItem(owner, "Gone", 10, core.ItemStatusSwapped, true)

	items, err := f.items.ListItems(ctx, dto.ItemListQuery{}, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, visible.ID, items[0].ID)
	require.NotNil(t, items[0].Uploader)
	assert.Equal(t, "Alice", items[0].Uploader.Name)

	// 非管理員即使要求 approved=false 也只拿到已審核商品
	items, err = f.items.ListItems(ctx, dto.ItemListQuery{Status: ptr(""), Approved: ptr("false")}, owner)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	for _, item := range items {
		assert.True(t, item.Approved)
	}

	items, err = f.items.ListItems(ctx, dto.ItemListQuery{Status: ptr(""), Approved: ptr("false")}, admin)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Hidden", items[0].Title)
}

func TestGetItem_UnapprovedVisibility(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	owner := f.mem.SeedUser("Alice", core.RoleUser, 50)
	other := f.mem.SeedUser("Bob", core.RoleUser, 50)
	admin := f.mem.SeedUser("Admin", core.RoleAdmin, 0)
	hidden := f.mem.SeedItem(owner, "Hidden", 10, core.ItemStatusPending, false)

	_, err := f.items.GetItem(ctx, hidden.ID, nil)
	requireAppErr(t, err, http.StatusNotFound, "Item not found")
	_, err = f.items.GetItem(ctx, hidden.ID, other)
	requireAppErr(t, err, http.StatusNotFound, "Item not found")

	for name, viewer := range map[string]*model.User{"owner": owner, "admin": admin} {
		resp, err := f.items.GetItem(ctx, hidden.ID, viewer)
		require.NoError(t, err, name)
		assert.Equal(t, hidden.ID, resp.ID)
	}

	_, err = f.items.GetItem(ctx, primitive.NewObjectID(), owner)
	requireAppErr(t, err, http.StatusNotFound, "Item not found")
}

func TestUpdateItem_NonOwnerForbidden(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	owner := f.mem.SeedUser("Alice", core.RoleUser, 50)
	other := f.mem.SeedUser("Bob", core.RoleUser, 50)
	item := f.mem.SeedItem(owner, "Jacket", 10, core.ItemStatusAvailable, true)

	_, err := f.items.UpdateItem(ctx, item.ID, other, &dto.UpdateItemRequest{Title: ptr("Mine now")})
	requireAppErr(t, err, http.StatusForbidden, "Insufficient permissions")

	unchanged, err := f.mem.Items().GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jacket", unchanged.Title)

	updated, err := f.items.UpdateItem(ctx, item.ID, owner, &dto.UpdateItemRequest{Title: ptr("Rain Jacket"), PointsRequired: ptr(int64(0))})
	require.NoError(t, err)
	assert.Equal(t, "Rain Jacket", updated.Title)
	assert.Equal(t, int64(0), updated.PointsRequired)

	_, err = f.items.UpdateItem(ctx, item.ID, owner, &dto.UpdateItemRequest{PointsRequired: ptr(int64(1001))})
	requireAppErr(t, err, http.StatusBadRequest, "")
}

func TestDeleteItem_RemovesImages(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	owner := f.mem.SeedUser("Alice", core.RoleUser, 50)
	other := f.mem.SeedUser("Bob", core.RoleUser, 50)

	created, err := f.items.CreateItem(ctx, owner, newItemRequest("Scarf"), []media.File{{Name: "a.jpg"}})
	require.NoError(t, err)

	err = f.items.DeleteItem(ctx, created.ID, other)
	requireAppErr(t, err, http.StatusForbidden, "")

	require.NoError(t, f.items.DeleteItem(ctx, created.ID, owner))
	assert.Equal(t, created.ImagePublicIDs, f.media.Deleted)

	err = f.items.DeleteItem(ctx, created.ID, owner)
	requireAppErr(t, err, http.StatusNotFound, "Item not found")
}

func TestUpdateItem_ReplacingImagesDeletesDroppedAssets(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	owner := f.mem.SeedUser("Alice", core.RoleUser, 50)

	req := newItemRequest("Coat")
	req.Images = []string{"https://cdn.example.com/external.jpg"}
	created, err := f.items.CreateItem(ctx, owner, req, []media.File{{Name: "a.jpg"}, {Name: "b.jpg"}})
	require.NoError(t, err)
	require.Len(t, created.Images, 3)
	require.Len(t, created.ImagePublicIDs, 2)
	keepURL, keepID := created.Images[1], created.ImagePublicIDs[0]
	dropID := created.ImagePublicIDs[1]

	// 只更新標題不動圖片
	_, err = f.items.UpdateItem(ctx, created.ID, owner, &dto.UpdateItemRequest{Title: ptr("Wool Coat")})
	require.NoError(t, err)
	assert.Empty(t, f.media.Deleted)

	updated, err := f.items.UpdateItem(ctx, created.ID, owner, &dto.UpdateItemRequest{
		Images: &[]string{keepURL, "https://cdn.example.com/new.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{keepURL, "https://cdn.example.com/new.jpg"}, updated.Images)
	assert.Equal(t, []string{keepID}, updated.ImagePublicIDs)
	assert.Equal(t, []string{dropID}, f.media.Deleted)

	stored, err := f.mem.Items().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{keepID}, stored.ImagePublicIDs)

	require.NoError(t, f.items.DeleteItem(ctx, created.ID, owner))
	assert.Equal(t, []string{dropID, keepID}, f.media.Deleted)
}

func TestReferencesAsset(t *testing.T) {
	assert.True(t, referencesAsset("/api/media/rewear/abc.jpg", "rewear/abc.jpg"))
	assert.True(t, referencesAsset("https://res.cloudinary.com/demo/image/upload/v17/rewear/abc.jpg", "rewear/abc"))
	assert.False(t, referencesAsset("https://res.cloudinary.com/demo/image/upload/v17/rewear/abcd.jpg", "rewear/abc"))
	assert.False(t, referencesAsset("https://cdn.example.com/other.jpg", "rewear/abc"))
	assert.False(t, referencesAsset("https://cdn.example.com/x.jpg", ""))
}

func TestApproveItem(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	owner := f.mem.SeedUser("Alice", core.RoleUser, 50)
	admin := f.mem.SeedUser("Admin", core.RoleAdmin, 0)
	item := f.mem.SeedItem(owner, "Boots", 10, core.ItemStatusPending, false)

	_, err := f.items.ApproveItem(ctx, item.ID, owner, true)
	requireAppErr(t, err, http.StatusForbidden, "Admin access required")

	// 重複核准結果相同
	for i := 0; i < 2; i++ {
		resp, err := f.items.ApproveItem(ctx, item.ID, admin, true)
		require.NoError(t, err)
		assert.True(t, resp.Approved)
		assert.Equal(t, core.ItemStatusAvailable, resp.Status)
	}

	resp, err := f.items.ApproveItem(ctx, item.ID, admin, false)
	require.NoError(t, err)
	assert.False(t, resp.Approved)
	assert.Equal(t, core.ItemStatusPending, resp.Status)

	swapped := f.mem.SeedItem(owner, "Traded", 10, core.ItemStatusSwapped, true)
	_, err = f.items.ApproveItem(ctx, swapped.ID, admin, false)
	requireAppErr(t, err, http.StatusBadRequest, "Item has already been swapped")
}

func TestListMyItems_IncludesUnapproved(t *testing.T) {
	f := newFixture(t, true)
	owner := f.mem.SeedUser("Alice", core.RoleUser, 50)
	other := f.mem.SeedUser("Bob", core.RoleUser, 50)
	f.mem.SeedItem(owner, "One", 10, core.ItemStatusPending, false)
	f.mem.SeedItem(owner, "Two", 10, core.ItemStatusAvailable, true)
	f.mem.SeedItem(other, "Three", 10, core.ItemStatusAvailable, true)

	items, err := f.items.ListMyItems(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, items, 2)
	// 新到舊
	assert.Equal(t, "Two", items[0].Title)
}
