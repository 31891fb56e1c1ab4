package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string
	AppEnv  string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// LLMProvider selects the upstream: "openai" | "anthropic" | "gemini".
	LLMProvider string
	LLMModel    string

	OpenAIKey    string
	AnthropicKey string
	GeminiKey    string

	// StaticToken, when set, admits requests presenting it exactly,
	// with no classroom lookup and no usage accounting.
	StaticToken string

	// GenerateTimeout bounds a single upstream generation call.
	GenerateTimeout time.Duration

	DefaultRequestLimit int
	DefaultMaxStudents  int
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// LoadEnv reads .env if present. Deployments set real env vars instead.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file, using process environment")
	}
}

func Load() *Config {
	return &Config{
		AppPort: get("APP_PORT", "8080"),
		AppEnv:  get("APP_ENV", "dev"),

		DBHost:     get("DB_HOST", "localhost"),
		DBPort:     get("DB_PORT", "5432"),
		DBUser:     get("DB_USER", "postgres"),
		DBPassword: get("DB_PASSWORD", "postgres"),
		DBName:     get("DB_NAME", "bitvibe"),
		DBSSLMode:  get("DB_SSLMODE", "disable"),

		LLMProvider: get("LLM_PROVIDER", "gemini"),
		LLMModel:    get("LLM_MODEL", ""),

		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
		GeminiKey:    os.Getenv("GEMINI_API_KEY"),

		StaticToken: os.Getenv("STATIC_ACCESS_TOKEN"),

		GenerateTimeout: time.Duration(getInt("GENERATE_TIMEOUT_SECONDS", 60)) * time.Second,

		DefaultRequestLimit: getInt("DEFAULT_REQUEST_LIMIT", 50),
		DefaultMaxStudents:  getInt("DEFAULT_MAX_STUDENTS", 40),
	}
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}
