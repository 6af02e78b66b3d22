package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizclash/internal/model"
)

type ResultRepo interface {
	Create(ctx context.Context, result *model.GameResult) error
	GetByUID(ctx context.Context, uid string) ([]*model.GameResult, error)
}

type resultRepo struct {
	collection *mongo.Collection
}

func NewResultRepo(db *mongo.Database) ResultRepo {
	return &resultRepo{
		collection: db.Collection("gameResults"),
	}
}

func (r *resultRepo) Create(ctx context.Context, result *model.GameResult) error {
	if result.ID == "" {
		result.ID = primitive.NewObjectID().Hex()
	}
	if result.Date.IsZero() {
		result.Date = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, result)
	return err
}

func (r *resultRepo) GetByUID(ctx context.Context, uid string) ([]*model.GameResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"uid": uid}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []*model.GameResult
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
