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

type ItemRepository struct {
	collection *mongo.Collection
}

func NewItemRepository(mongoClient *client.MongoClient) *ItemRepository {
	repository := &ItemRepository{
		collection: mongoClient.Collection(core.MongoCollectionItems),
	}
	_ = repository.ensureIndexes(context.Background())
	return repository
}

func (repository *ItemRepository) ensureIndexes(contextValue context.Context) error {
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "uploaderId", Value: 1}}, Options: options.Index().SetName("idx_uploaderId")},
		{Keys: bson.D{{Key: "status", Value: 1}}, Options: options.Index().SetName("idx_status")},
		{Keys: bson.D{{Key: "approved", Value: 1}}, Options: options.Index().SetName("idx_approved")},
		{Keys: bson.D{{Key: "category", Value: 1}}, Options: options.Index().SetName("idx_category")},
		{ // 列表一律新到舊
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_createdAt_desc"),
		},
	}
	_, _ = repository.collection.Indexes().CreateMany(contextValue, indexModels)
	return nil
}

func (repository *ItemRepository) Create(
	contextValue context.Context,
	item *model.Item,
) (_ *model.Item, returnedError error) {

	nowUTC := time.Now().UTC()
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	if item.Images == nil {
		item.Images = []string{}
	}
	item.CreatedAt = nowUTC
	item.UpdatedAt = nowUTC

	insertResult, insertError := repository.collection.InsertOne(contextValue, item)
	if insertError != nil {
		return nil, insertError
	}
	objectID, ok := insertResult.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected InsertedID type: %T", insertResult.InsertedID)
	}
	item.ID = objectID
	return item, nil
}

func (repository *ItemRepository) GetByID(
	contextValue context.Context,
	itemIdentifier primitive.ObjectID,
) (_ *model.Item, returnedError error) {

	var item model.Item
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"_id": itemIdentifier}).Decode(&item); returnedError != nil {
		return nil, returnedError
	}
	return &item, nil
}

// List：依條件查詢，新到舊
func (repository *ItemRepository) List(
	contextValue context.Context,
	filter model.ItemFilter,
) (_ []*model.Item, returnedError error) {

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, findError := repository.collection.Find(contextValue, BuildItemFilter(filter), findOptions)
	if findError != nil {
		return nil, findError
	}
	defer cursor.Close(contextValue)

	items := []*model.Item{}
	if returnedError = cursor.All(contextValue, &items); returnedError != nil {
		return nil, returnedError
	}
	return items, nil
}

func (repository *ItemRepository) ListByIDs(
	contextValue context.Context,
	itemIdentifiers []primitive.ObjectID,
) (_ []*model.Item, returnedError error) {

	if len(itemIdentifiers) == 0 {
		return []*model.Item{}, nil
	}
	cursor, findError := repository.collection.Find(contextValue, bson.M{"_id": bson.M{"$in": itemIdentifiers}})
	if findError != nil {
		return nil, findError
	}
	defer cursor.Close(contextValue)

	items := []*model.Item{}
	if returnedError = cursor.All(contextValue, &items); returnedError != nil {
		return nil, returnedError
	}
	return items, nil
}

// Update：套用 patch，回傳更新後文件
func (repository *ItemRepository) Update(
	contextValue context.Context,
	itemIdentifier primitive.ObjectID,
	patch model.ItemPatch,
) (_ *model.Item, returnedError error) {

	set := patch.ToSet()
	if len(set) == 0 {
		return repository.GetByID(contextValue, itemIdentifier)
	}

	var item model.Item
	returnedError = repository.collection.FindOneAndUpdate(
		contextValue,
		bson.M{"_id": itemIdentifier},
		withUpdatedAt(bson.M{"$set": set}),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&item)
	if returnedError != nil {
		return nil, returnedError
	}
	return &item, nil
}

// SetApproval：審核。已交換的商品不可再改狀態，回傳 ErrStatusConflict
func (repository *ItemRepository) SetApproval(
	contextValue context.Context,
	itemIdentifier primitive.ObjectID,
	approved bool,
) (_ *model.Item, returnedError error) {

	status := core.ItemStatusPending
	if approved {
		status = core.ItemStatusAvailable
	}

	var item model.Item
	returnedError = repository.collection.FindOneAndUpdate(
		contextValue,
		bson.M{"_id": itemIdentifier, "status": bson.M{"$ne": core.ItemStatusSwapped}},
		withUpdatedAt(bson.M{"$set": bson.M{"approved": approved, "status": status}}),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&item)
	if returnedError == mongo.ErrNoDocuments {
		return nil, repository.missingOrConflict(contextValue, itemIdentifier)
	}
	if returnedError != nil {
		return nil, returnedError
	}
	return &item, nil
}

// TransitionStatus：條件式狀態轉換，目前狀態需在 from 之中
func (repository *ItemRepository) TransitionStatus(
	contextValue context.Context,
	itemIdentifier primitive.ObjectID,
	from []core.ItemStatus,
	to core.ItemStatus,
) (returnedError error) {

	result, updateError := repository.collection.UpdateOne(
		contextValue,
		bson.M{"_id": itemIdentifier, "status": bson.M{"$in": from}},
		withUpdatedAt(bson.M{"$set": bson.M{"status": to}}),
	)
	if updateError != nil {
		return updateError
	}
	if result.MatchedCount == 0 {
		return repository.missingOrConflict(contextValue, itemIdentifier)
	}
	return nil
}

func (repository *ItemRepository) DeleteByID(
	contextValue context.Context,
	itemIdentifier primitive.ObjectID,
) (returnedError error) {
	result, deleteError := repository.collection.DeleteOne(contextValue, bson.M{"_id": itemIdentifier})
	if deleteError != nil {
		return deleteError
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// CountByStatus：依 status + approved 分組計數
func (repository *ItemRepository) CountByStatus(
	contextValue context.Context,
) (_ []model.ItemCount, returnedError error) {

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "status", Value: "$status"}, {Key: "approved", Value: "$approved"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "status", Value: "$_id.status"},
			{Key: "approved", Value: "$_id.approved"},
			{Key: "count", Value: 1},
		}}},
	}
	cursor, aggregateError := repository.collection.Aggregate(contextValue, pipeline)
	if aggregateError != nil {
		return nil, aggregateError
	}
	defer cursor.Close(contextValue)

	counts := []model.ItemCount{}
	if returnedError = cursor.All(contextValue, &counts); returnedError != nil {
		return nil, returnedError
	}
	return counts, nil
}

func (repository *ItemRepository) missingOrConflict(contextValue context.Context, itemIdentifier primitive.ObjectID) error {
	count, countError := repository.collection.CountDocuments(contextValue, bson.M{"_id": itemIdentifier})
	if countError != nil {
		return countError
	}
	if count == 0 {
		return mongo.ErrNoDocuments
	}
	return ErrStatusConflict
}
