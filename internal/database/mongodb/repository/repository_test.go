package repository

import (
	"errors"
	"testing"

	"rewear/internal/core"
	"rewear/internal/database/mongodb/model"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestBuildItemFilter(t *testing.T) {
	available := core.ItemStatusAvailable
	tops := core.CategoryTops
	approved := true
	owner := primitive.NewObjectID()

	tests := []struct {
		name   string
		filter model.ItemFilter
		want   bson.M
	}{
		{name: "empty", filter: model.ItemFilter{}, want: bson.M{}},
		{
			name:   "public default",
			filter: model.ItemFilter{Status: &available, Approved: &approved},
			want:   bson.M{"status": core.ItemStatusAvailable, "approved": true},
		},
		{
			name:   "all fields",
			filter: model.ItemFilter{Status: &available, Category: &tops, Approved: &approved, UploaderID: &owner},
			want:   bson.M{"status": core.ItemStatusAvailable, "category": core.CategoryTops, "approved": true, "uploaderId": owner},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildItemFilter(tt.filter))
		})
	}
}

func TestBuildSwapFilter(t *testing.T) {
	user := primitive.NewObjectID()
	pending := core.SwapStatusPending

	got := BuildSwapFilter(model.SwapFilter{UserID: user, Status: &pending})
	assert.Equal(t, core.SwapStatusPending, got["status"])
	assert.Equal(t, bson.A{bson.M{"fromUserId": user}, bson.M{"toUserId": user}}, got["$or"])

	assert.Equal(t, bson.M{}, BuildSwapFilter(model.SwapFilter{}))
}

func TestWithUpdatedAt(t *testing.T) {
	update := withUpdatedAt(bson.M{"$set": bson.M{"status": "available"}})
	assert.Equal(t, bson.M{"updatedAt": true}, update["$currentDate"])
}

func TestWrapDuplicate(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.True(t, errors.Is(wrapDuplicate(dup), ErrDuplicateKey))

	other := errors.New("boom")
	assert.Same(t, other, wrapDuplicate(other))
}
