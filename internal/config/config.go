package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreFirestore = "firestore"
	StoreMongo     = "mongo"
	StoreFile      = "file"

	AuthFirebase = "firebase"
	AuthJWT      = "jwt"
)

type Config struct {
	ServerAddress  string
	StoreBackend   string
	AuthMode       string
	JWTSecret      string
	RequestTimeout time.Duration
	LogLevel       string

	FirebaseProjectID       string
	FirebaseCredentialsJSON string

	MongoURI string
	MongoDB  string

	DataDir string
}

func Load() *Config {
	_ = godotenv.Load()

	timeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "10s"))
	if err != nil || timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Config{
		ServerAddress:           getEnv("SERVER_ADDRESS", ":8080"),
		StoreBackend:            getEnv("STORE_BACKEND", StoreFirestore),
		AuthMode:                getEnv("AUTH_MODE", AuthFirebase),
		JWTSecret:               getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		RequestTimeout:          timeout,
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		FirebaseProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsJSON: os.Getenv("FIREBASE_CREDENTIALS_JSON"),
		MongoURI:                os.Getenv("MONGO_URI"),
		MongoDB:                 getEnv("MONGO_DB", "collabs"),
		DataDir:                 getEnv("DATA_DIR", "./data"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
