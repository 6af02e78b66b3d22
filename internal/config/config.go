package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	MongoURI  string
	MongoDB   string
	RedisAddr string
	HTTPPort  string
	JWTSecret string
	Game      GameConfig
	Supplier  SupplierConfig
}

// GameConfig holds the session coordinator's timing knobs
type GameConfig struct {
	// StartDelay is the settle time between the started broadcast and
	// delivery of question 0
	StartDelay time.Duration

	// AnswerDeadline bounds how long a question stays open; resolution is
	// forced with whatever answers are in hand once it elapses
	AnswerDeadline time.Duration

	// AdvanceDelay is how long clients get to display a result before the
	// next question or the finish broadcast
	AdvanceDelay time.Duration

	// CodeAttempts caps the retry loop for game code collisions
	CodeAttempts int
}

func Load() *Config {
	return &Config{
		MongoURI:  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getEnv("MONGO_DB", "quizclash"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:  getEnv("HTTP_PORT", "8080"),
		JWTSecret: getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		Game: GameConfig{
			StartDelay:     getDuration("GAME_START_DELAY", time.Second),
			AnswerDeadline: getDuration("GAME_ANSWER_DEADLINE", 30*time.Second),
			AdvanceDelay:   getDuration("GAME_ADVANCE_DELAY", 3*time.Second),
			CodeAttempts:   getInt("GAME_CODE_ATTEMPTS", 10),
		},
		Supplier: DefaultSupplierConfig(),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
