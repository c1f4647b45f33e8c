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

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(mongoClient *client.MongoClient) *UserRepository {
	repository := &UserRepository{
		collection: mongoClient.Collection(core.MongoCollectionUsers),
	}
	// 啟動時建立索引（冪等、存在即跳過）
	_ = repository.ensureIndexes(context.Background())
	return repository
}

func (repository *UserRepository) ensureIndexes(contextValue context.Context) error {
	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "firebaseUid", Value: 1}},
			Options: options.Index().SetName("uniq_firebaseUid").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
	}
	_, _ = repository.collection.Indexes().CreateMany(contextValue, indexModels)
	return nil
}

// Create：單文件插入，唯一索引衝突回傳 ErrDuplicateKey
func (repository *UserRepository) Create(
	contextValue context.Context,
	user *model.User,
) (_ *model.User, returnedError error) {

	nowUTC := time.Now().UTC()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = nowUTC
	user.UpdatedAt = nowUTC

	insertResult, insertError := repository.collection.InsertOne(contextValue, user)
	if insertError != nil {
		return nil, wrapDuplicate(insertError)
	}
	objectID, ok := insertResult.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected InsertedID type: %T", insertResult.InsertedID)
	}
	user.ID = objectID
	return user, nil
}

func (repository *UserRepository) GetByID(
	contextValue context.Context,
	userIdentifier primitive.ObjectID,
) (_ *model.User, returnedError error) {

	var user model.User
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"_id": userIdentifier}).Decode(&user); returnedError != nil {
		return nil, returnedError
	}
	return &user, nil
}

func (repository *UserRepository) GetByFirebaseUID(
	contextValue context.Context,
	firebaseUID string,
) (_ *model.User, returnedError error) {

	var user model.User
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"firebaseUid": firebaseUID}).Decode(&user); returnedError != nil {
		return nil, returnedError
	}
	return &user, nil
}

// ListByIDs：批次查詢，給投影使用
func (repository *UserRepository) ListByIDs(
	contextValue context.Context,
	userIdentifiers []primitive.ObjectID,
) (_ []*model.User, returnedError error) {

	if len(userIdentifiers) == 0 {
		return []*model.User{}, nil
	}
	cursor, findError := repository.collection.Find(contextValue, bson.M{"_id": bson.M{"$in": userIdentifiers}})
	if findError != nil {
		return nil, findError
	}
	defer cursor.Close(contextValue)

	users := []*model.User{}
	if returnedError = cursor.All(contextValue, &users); returnedError != nil {
		return nil, returnedError
	}
	return users, nil
}

// UpdateProfile：只更新 patch 內有值的欄位，回傳更新後文件
func (repository *UserRepository) UpdateProfile(
	contextValue context.Context,
	userIdentifier primitive.ObjectID,
	patch model.UserPatch,
) (_ *model.User, returnedError error) {

	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Avatar != nil {
		set["avatar"] = *patch.Avatar
	}
	if len(set) == 0 {
		return repository.GetByID(contextValue, userIdentifier)
	}

	var user model.User
	returnedError = repository.collection.FindOneAndUpdate(
		contextValue,
		bson.M{"_id": userIdentifier},
		withUpdatedAt(bson.M{"$set": set}),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if returnedError != nil {
		return nil, returnedError
	}
	return &user, nil
}

// AdjustPoints：條件式 $inc。delta 為負時要求 points >= -delta，
// 不符合時若文件存在回傳 ErrInsufficientPoints，否則 mongo.ErrNoDocuments。
func (repository *UserRepository) AdjustPoints(
	contextValue context.Context,
	userIdentifier primitive.ObjectID,
	delta int64,
) (_ *model.User, returnedError error) {

	filter := bson.M{"_id": userIdentifier}
	if delta < 0 {
		filter["points"] = bson.M{"$gte": -delta}
	}

	var user model.User
	returnedError = repository.collection.FindOneAndUpdate(
		contextValue,
		filter,
		withUpdatedAt(bson.M{"$inc": bson.M{"points": delta}}),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if returnedError == mongo.ErrNoDocuments && delta < 0 {
		count, countError := repository.collection.CountDocuments(contextValue, bson.M{"_id": userIdentifier})
		if countError != nil {
			return nil, countError
		}
		if count > 0 {
			return nil, ErrInsufficientPoints
		}
	}
	if returnedError != nil {
		return nil, returnedError
	}
	return &user, nil
}

// Promote：升級為管理員並設定點數（create-admin 指令）
func (repository *UserRepository) Promote(
	contextValue context.Context,
	userIdentifier primitive.ObjectID,
	points int64,
) (_ *model.User, returnedError error) {

	var user model.User
	returnedError = repository.collection.FindOneAndUpdate(
		contextValue,
		bson.M{"_id": userIdentifier},
		withUpdatedAt(bson.M{"$set": bson.M{"role": core.RoleAdmin, "points": points}}),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if returnedError != nil {
		return nil, returnedError
	}
	return &user, nil
}

func (repository *UserRepository) Count(contextValue context.Context) (int64, error) {
	return repository.collection.CountDocuments(contextValue, bson.M{})
}
