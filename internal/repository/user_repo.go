package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizclash/internal/model"
)

type UserRepo interface {
	Get(ctx context.Context, uid string) (*model.User, error)

	// ApplyGameStats upserts the user's stats in a read-modify-write
	// transaction: gamesPlayed +1, wins +1 on a win, score added to
	// correctAnswers. Creates the user document on first finalization.
	ApplyGameStats(ctx context.Context, uid, displayName string, outcome model.Outcome, score int) error
}

type userRepo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewUserRepo(client *mongo.Client, db *mongo.Database) UserRepo {
	return &userRepo{
		client:     client,
		collection: db.Collection("users"),
	}
}

func (r *userRepo) Get(ctx context.Context, uid string) (*model.User, error) {
	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"_id": uid}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // User not found
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) ApplyGameStats(ctx context.Context, uid, displayName string, outcome model.Outcome, score int) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var user model.User
		err := r.collection.FindOne(sc, bson.M{"_id": uid}).Decode(&user)
		if err != nil && err != mongo.ErrNoDocuments {
			return nil, err
		}
		if err == mongo.ErrNoDocuments {
			user = model.User{UID: uid, DisplayName: displayName}
		}

		user.Stats.GamesPlayed++
		if outcome == model.OutcomeWin {
			user.Stats.Wins++
		}
		user.Stats.CorrectAnswers += score

		opts := options.Replace().SetUpsert(true)
		_, err = r.collection.ReplaceOne(sc, bson.M{"_id": uid}, user, opts)
		return nil, err
	})
	return err
}
