package repository

import (
	"context"
	"fmt"
	"time"

	"rewear/internal/core"
	client "rewear/internal/database/client"
	"rewear/internal/database/mongodb/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SwapRequestRepository struct {
	collection *mongo.Collection
}

func NewSwapRequestRepository(mongoClient *client.MongoClient) *SwapRequestRepository {
	repository := &SwapRequestRepository{
		collection: mongoClient.Collection(core.MongoCollectionSwapRequests),
	}
	_ = repository.ensureIndexes(context.Background())
	return repository
}

func (repository *SwapRequestRepository) ensureIndexes(contextValue context.Context) error {
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "fromUserId", Value: 1}}, Options: options.Index().SetName("idx_fromUserId")},
		{Keys: bson.D{{Key: "toUserId", Value: 1}}, Options: options.Index().SetName("idx_toUserId")},
		{Keys: bson.D{{Key: "itemId", Value: 1}}, Options: options.Index().SetName("idx_itemId")},
		{Keys: bson.D{{Key: "status", Value: 1}}, Options: options.Index().SetName("idx_status")},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("idx_createdAt_desc")},
	}
	_, _ = repository.collection.Indexes().CreateMany(contextValue, indexModels)
	return nil
}

func (repository *SwapRequestRepository) Create(
	contextValue context.Context,
	swap *model.SwapRequest,
) (_ *model.SwapRequest, returnedError error) {

	nowUTC := time.Now().UTC()
	if swap.ID.IsZero() {
		swap.ID = primitive.NewObjectID()
	}
	swap.CreatedAt = nowUTC
	swap.UpdatedAt = nowUTC

	insertResult, insertError := repository.collection.InsertOne(contextValue, swap)
	if insertError != nil {
		return nil, insertError
	}
	objectID, ok := insertResult.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected InsertedID type: %T", insertResult.InsertedID)
	}
	swap.ID = objectID
	return swap, nil
}

func (repository *SwapRequestRepository) GetByID(
	contextValue context.Context,
	swapIdentifier primitive.ObjectID,
) (_ *model.SwapRequest, returnedError error) {

	var swap model.SwapRequest
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"_id": swapIdentifier}).Decode(&swap); returnedError != nil {
		return nil, returnedError
	}
	return &swap, nil
}

func (repository *SwapRequestRepository) List(
	contextValue context.Context,
	filter model.SwapFilter,
) (_ []*model.SwapRequest, returnedError error) {

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, findError := repository.collection.Find(contextValue, BuildSwapFilter(filter), findOptions)
	if findError != nil {
		return nil, findError
	}
	defer cursor.Close(contextValue)

	swaps := []*model.SwapRequest{}
	if returnedError = cursor.All(contextValue, &swaps); returnedError != nil {
		return nil, returnedError
	}
	return swaps, nil
}

// TransitionStatus：條件式狀態轉換 from → to，回傳更新後文件
func (repository *SwapRequestRepository) TransitionStatus(
	contextValue context.Context,
	swapIdentifier primitive.ObjectID,
	from core.SwapStatus,
	to core.SwapStatus,
) (_ *model.SwapRequest, returnedError error) {

	var swap model.SwapRequest
	returnedError = repository.collection.FindOneAndUpdate(
		contextValue,
		bson.M{"_id": swapIdentifier, "status": from},
		withUpdatedAt(bson.M{"$set": bson.M{"status": to}}),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&swap)
	if returnedError == mongo.ErrNoDocuments {
		count, countError := repository.collection.CountDocuments(contextValue, bson.M{"_id": swapIdentifier})
		if countError != nil {
			return nil, countError
		}
		if count > 0 {
			return nil, ErrStatusConflict
		}
	}
	if returnedError != nil {
		return nil, returnedError
	}
	return &swap, nil
}

func (repository *SwapRequestRepository) DeleteByID(
	contextValue context.Context,
	swapIdentifier primitive.ObjectID,
) (returnedError error) {
	result, deleteError := repository.collection.DeleteOne(contextValue, bson.M{"_id": swapIdentifier})
	if deleteError != nil {
		return deleteError
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (repository *SwapRequestRepository) CountByStatus(
	contextValue context.Context,
) (_ []model.SwapCount, returnedError error) {

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, aggregateError := repository.collection.Aggregate(contextValue, pipeline)
	if aggregateError != nil {
		return nil, aggregateError
	}
	defer cursor.Close(contextValue)

	counts := []model.SwapCount{}
	if returnedError = cursor.All(contextValue, &counts); returnedError != nil {
		return nil, returnedError
	}
	return counts, nil
}
