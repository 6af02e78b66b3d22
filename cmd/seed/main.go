package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizclash/internal/config"
	"quizclash/internal/model"
	"quizclash/internal/repository"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	gameRepo := repository.NewGameRepo(client.Database(cfg.MongoDB))

	hostID := "u_demo0001"

	game := &model.Game{
		Code:     "100001",
		HostID:   hostID,
		Status:   model.GameWaiting,
		IsPublic: true,
		Players: []model.Player{
			{UID: hostID, DisplayName: "Demo Host", Score: 0},
		},
		Questions: []model.Question{
			{
				Text:               "Which planet is known as the Red Planet?",
				Options:            []string{"Venus", "Mars", "Jupiter", "Saturn"},
				CorrectAnswerIndex: 1,
				Explanation:        "Iron oxide on Mars' surface gives it a reddish color.",
				Category:           "General Knowledge",
				Difficulty:         "easy",
			},
			{
				Text:               "What is the largest ocean on Earth?",
				Options:            []string{"Atlantic", "Indian", "Arctic", "Pacific"},
				CorrectAnswerIndex: 3,
				Explanation:        "The Pacific covers about a third of the planet's surface.",
				Category:           "General Knowledge",
				Difficulty:         "easy",
			},
			{
				Text:               "Who wrote 'Romeo and Juliet'?",
				Options:            []string{"Charles Dickens", "William Shakespeare", "Jane Austen", "Mark Twain"},
				CorrectAnswerIndex: 1,
				Explanation:        "Shakespeare wrote the tragedy in the 1590s.",
				Category:           "General Knowledge",
				Difficulty:         "easy",
			},
			{
				Text:               "What is the chemical symbol for gold?",
				Options:            []string{"Go", "Gd", "Au", "Ag"},
				CorrectAnswerIndex: 2,
				Explanation:        "Au comes from the Latin 'aurum'.",
				Category:           "General Knowledge",
				Difficulty:         "medium",
			},
			{
				Text:               "How many continents are there?",
				Options:            []string{"5", "6", "7", "8"},
				CorrectAnswerIndex: 2,
				Explanation:        "The conventional count is seven continents.",
				Category:           "General Knowledge",
				Difficulty:         "easy",
			},
		},
		CurrentQuestion: 0,
		Topic:           "General Knowledge",
		Difficulty:      "easy",
		CreatedAt:       time.Now(),
	}

	if err := gameRepo.Create(ctx, game); err != nil {
		if err == repository.ErrDuplicateCode {
			log.Fatalf("Game %s already exists, delete it first or join it directly", game.Code)
		}
		log.Fatalf("Failed to insert game: %v", err)
	}

	fmt.Printf("Successfully created demo game %s hosted by %s\n", game.Code, hostID)
}
