package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

type Config struct {
	CompletionsAPIURL  string
	CompletionsAPIKey  string
	CompletionsModel   string
	CompletionsTimeout time.Duration
	ServerPort         string
	AllowedOrigins     string
	MemoryAPIURL       string
	MemoryAPIKey       string
	MemorySearchLimit  int
	ProfilesPath       string
	HistoryBackend     string
	HistoryDBPath      string
	HistoryWindow      int
	NudgeCron          string
	NatsURL            string
}

func getEnv(key, defaultValue string, printEnv bool) string {
	logger := log.Default()
	value := os.Getenv(key)
	if printEnv {
		logger.Info("Env", "key", key, "value", value)
	}
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvOrPanic(key string, printEnv bool) string {
	value := getEnv(key, "", printEnv)
	if value == "" {
		panic(fmt.Sprintf("Environment variable %s is not set", key))
	}
	return value
}

func getEnvInt(key string, defaultValue int, printEnv bool) int {
	value := getEnv(key, "", printEnv)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		panic(fmt.Sprintf("Environment variable %s is not an integer: %v", key, err))
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration, printEnv bool) time.Duration {
	value := getEnv(key, "", printEnv)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		panic(fmt.Sprintf("Environment variable %s is not a duration: %v", key, err))
	}
	return parsed
}

func LoadConfig(printEnv bool) (*Config, error) {
	_ = godotenv.Load()

	conf := &Config{
		CompletionsAPIURL:  getEnv("COMPLETIONS_API_URL", "https://api.openai.com/v1", printEnv),
		CompletionsAPIKey:  getEnvOrPanic("COMPLETIONS_API_KEY", printEnv),
		CompletionsModel:   getEnv("COMPLETIONS_MODEL", "gpt-4.1-nano", printEnv),
		CompletionsTimeout: getEnvDuration("COMPLETIONS_TIMEOUT", 30*time.Second, printEnv),
		ServerPort:         getEnv("SERVER_PORT", "3001", printEnv),
		AllowedOrigins:     getEnv("ALLOWED_ORIGINS", "*", printEnv),
		MemoryAPIURL:       getEnv("MEMORY_API_URL", "http://localhost:8888", printEnv),
		MemoryAPIKey:       getEnv("MEMORY_API_KEY", "", printEnv),
		MemorySearchLimit:  getEnvInt("MEMORY_SEARCH_LIMIT", 5, printEnv),
		ProfilesPath:       getEnv("PROFILES_PATH", "", printEnv),
		HistoryBackend:     getEnv("HISTORY_BACKEND", "memory", printEnv),
		HistoryDBPath:      getEnv("HISTORY_DB_PATH", "./output/sqlite/history.db", printEnv),
		HistoryWindow:      getEnvInt("HISTORY_WINDOW", 20, printEnv),
		NudgeCron:          getEnv("NUDGE_CRON", "0 9 * * *", printEnv),
		NatsURL:            getEnv("NATS_URL", "", printEnv),
	}

	return conf, nil
}
