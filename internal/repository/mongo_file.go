package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/filedepot/filedepot/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// rootParentSentinel is stored in parent_id for root-level files. Non-root
// files store the parent folder's ObjectID instead.
const rootParentSentinel = int32(0)

// MongoFileRepository implements domain.FileRepository
type MongoFileRepository struct {
	collection *mongo.Collection
}

func NewMongoFileRepository(db *mongo.Database) *MongoFileRepository {
	coll := db.Collection("files")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Listing always filters by owner and parent
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "parent_id", Value: 1},
		},
	})

	return &MongoFileRepository{
		collection: coll,
	}
}

func (r *MongoFileRepository) Create(ctx context.Context, file *domain.File) error {
	userID, err := primitive.ObjectIDFromHex(file.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	objID := primitive.NewObjectID()
	file.ID = objID.Hex()
	file.CreatedAt = time.Now()

	doc := bson.M{
		"_id":        objID,
		"user_id":    userID,
		"name":       file.Name,
		"type":       file.Type,
		"is_public":  file.IsPublic,
		"created_at": file.CreatedAt,
	}

	if file.ParentID.IsRoot() {
		doc["parent_id"] = rootParentSentinel
	} else {
		parentID, err := primitive.ObjectIDFromHex(file.ParentID.ID())
		if err != nil {
			return domain.ErrInvalidParent
		}
		doc["parent_id"] = parentID
	}

	if file.LocalPath != "" {
		doc["local_path"] = file.LocalPath
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	return nil
}

func (r *MongoFileRepository) GetByID(ctx context.Context, id string) (*domain.File, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

func (r *MongoFileRepository) GetOwned(ctx context.Context, id, userID string) (*domain.File, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	ownerID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": objID, "user_id": ownerID})
}

func (r *MongoFileRepository) ListByParent(ctx context.Context, userID string, parent domain.ParentRef, skip, limit int64) ([]*domain.File, error) {
	ownerID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	filter := bson.M{"user_id": ownerID}
	if parent.IsRoot() {
		filter["parent_id"] = rootParentSentinel
	} else {
		parentID, err := primitive.ObjectIDFromHex(parent.ID())
		if err != nil {
			// An unparseable parent id cannot match any stored folder.
			return []*domain.File{}, nil
		}
		filter["parent_id"] = parentID
	}

	// Natural insertion order; no explicit sort
	opts := options.Find().SetSkip(skip).SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer cursor.Close(ctx)

	files := []*domain.File{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode file: %w", err)
		}
		files = append(files, mapBsonToFile(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate files: %w", err)
	}
	return files, nil
}

func (r *MongoFileRepository) SetPublic(ctx context.Context, id, userID string, public bool) (*domain.File, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	ownerID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	filter := bson.M{"_id": objID, "user_id": ownerID}
	update := bson.M{"$set": bson.M{"is_public": public}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var raw bson.M
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update file visibility: %w", err)
	}
	return mapBsonToFile(raw), nil
}

func (r *MongoFileRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}
	return n, nil
}

func (r *MongoFileRepository) findOne(ctx context.Context, filter bson.M) (*domain.File, error) {
	var raw bson.M
	if err := r.collection.FindOne(ctx, filter).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return mapBsonToFile(raw), nil
}

func mapBsonToFile(raw bson.M) *domain.File {
	file := &domain.File{}
	if id, ok := raw["_id"].(primitive.ObjectID); ok {
		file.ID = id.Hex()
	}
	if userID, ok := raw["user_id"].(primitive.ObjectID); ok {
		file.UserID = userID.Hex()
	}
	file.Name, _ = raw["name"].(string)
	file.Type, _ = raw["type"].(string)
	file.IsPublic, _ = raw["is_public"].(bool)
	if parentID, ok := raw["parent_id"].(primitive.ObjectID); ok {
		file.ParentID = domain.FolderParent(parentID.Hex())
	}
	file.LocalPath, _ = raw["local_path"].(string)
	if ts, ok := raw["created_at"].(primitive.DateTime); ok {
		file.CreatedAt = ts.Time()
	}
	return file
}
