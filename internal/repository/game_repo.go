package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"quizclash/internal/model"
)

// ErrDuplicateCode is returned when a game code is already taken; the
// coordinator retries creation with a fresh code
var ErrDuplicateCode = errors.New("game code already in use")

type GameRepo interface {
	Create(ctx context.Context, game *model.Game) error
	GetByCode(ctx context.Context, code string) (*model.Game, error)
	UpdatePlayers(ctx context.Context, code string, players []model.Player) error
	SetStatus(ctx context.Context, code string, status model.GameStatus) error
	SetCurrentQuestion(ctx context.Context, code string, index int) error
	Delete(ctx context.Context, code string) error
}

type gameRepo struct {
	collection *mongo.Collection
}

func NewGameRepo(db *mongo.Database) GameRepo {
	return &gameRepo{
		collection: db.Collection("games"),
	}
}

func (r *gameRepo) Create(ctx context.Context, game *model.Game) error {
	// The code is the document _id, so a collision fails atomically
	_, err := r.collection.InsertOne(ctx, game)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateCode
	}
	return err
}

func (r *gameRepo) GetByCode(ctx context.Context, code string) (*model.Game, error) {
	var game model.Game
	err := r.collection.FindOne(ctx, bson.M{"_id": code}).Decode(&game)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Game not found
		}
		return nil, err
	}
	return &game, nil
}

func (r *gameRepo) UpdatePlayers(ctx context.Context, code string, players []model.Player) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": code}, bson.M{"$set": bson.M{"players": players}})
	return err
}

func (r *gameRepo) SetStatus(ctx context.Context, code string, status model.GameStatus) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": code}, bson.M{"$set": bson.M{"status": status}})
	return err
}

func (r *gameRepo) SetCurrentQuestion(ctx context.Context, code string, index int) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": code}, bson.M{"$set": bson.M{"currentQuestion": index}})
	return err
}

func (r *gameRepo) Delete(ctx context.Context, code string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": code})
	return err
}
