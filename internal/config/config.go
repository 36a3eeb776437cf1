package config

import (
	"os"
	"strconv"
)

type Config struct {
	Env                string
	Port               string
	MongoURI           string
	MongoDB            string
	JWTSecret          string
	AccessToken        string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
	OAuthStateSecret   string
	FrontendURL        string
	RedisAddr          string
	RateLimitPerMin    int
	RabbitURL          string
}

func Load() Config {
	return Config{
		Env:                getenv("APP_ENV", "local"),
		Port:               getenv("APP_PORT", "8080"),
		MongoURI:           getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:            getenv("MONGO_DB", "taskgate"),
		JWTSecret:          getenv("JWT", "default_secret_key"),
		AccessToken:        getenv("ACCESS_TOKEN", ""),
		GoogleClientID:     getenv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getenv("GOOGLE_CLIENT_SECRET", ""),
		GoogleCallbackURL:  getenv("GOOGLE_CALLBACK_URL", "http://localhost:8080/api/auth/google/callback"),
		OAuthStateSecret:   getenv("OAUTH_STATE_SECRET", "default_state_key"),
		FrontendURL:        getenv("FRONTEND_URL", "http://localhost:3000"),
		RedisAddr:          getenv("REDIS_ADDR", ""),
		RateLimitPerMin:    atoi(getenv("RATE_LIMIT_PER_MIN", "5")),
		RabbitURL:          getenv("RABBIT_URL", ""),
	}
}

func atoi(s string) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return 0
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
