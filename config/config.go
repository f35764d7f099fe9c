package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Dosada05/swiss-pairing/pairing"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL          string
	JWTSecretKey         string
	ServerPort           int
	DirectorPasswordHash string
	CORSAllowedOrigins   []string

	Pairing PairingConfig
	R2      *R2Config
}

type PairingConfig struct {
	Strategy       pairing.Strategy
	AllowBye       bool
	MaxAttempts    int
	MaxSearchSteps int
}

// R2Config is nil unless every R2_* variable is set.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the process environment without touching .env files.
func FromEnv() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	pairingCfg, err := loadPairing()
	if err != nil {
		return nil, err
	}

	r2, err := loadR2()
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseURL:          dbURL,
		JWTSecretKey:         jwtKey,
		ServerPort:           port,
		DirectorPasswordHash: os.Getenv("DIRECTOR_PASSWORD_HASH"),
		CORSAllowedOrigins:   splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		Pairing:              pairingCfg,
		R2:                   r2,
	}, nil
}

func loadPairing() (PairingConfig, error) {
	strategy, err := pairing.ParseStrategy(os.Getenv("PAIRING_STRATEGY"))
	if err != nil {
		return PairingConfig{}, fmt.Errorf("invalid PAIRING_STRATEGY: %w", err)
	}

	maxAttempts, err := intEnv("PAIRING_MAX_ATTEMPTS", pairing.DefaultMaxAttempts)
	if err != nil {
		return PairingConfig{}, err
	}
	maxSteps, err := intEnv("PAIRING_MAX_SEARCH_STEPS", pairing.DefaultMaxSearchSteps)
	if err != nil {
		return PairingConfig{}, err
	}
	if maxAttempts <= 0 || maxSteps <= 0 {
		return PairingConfig{}, fmt.Errorf("PAIRING_MAX_ATTEMPTS and PAIRING_MAX_SEARCH_STEPS must be positive")
	}

	allowBye := false
	if raw := os.Getenv("PAIRING_ALLOW_BYE"); raw != "" {
		allowBye, err = strconv.ParseBool(raw)
		if err != nil {
			return PairingConfig{}, fmt.Errorf("invalid PAIRING_ALLOW_BYE environment variable: %w", err)
		}
	}

	return PairingConfig{
		Strategy:       strategy,
		AllowBye:       allowBye,
		MaxAttempts:    maxAttempts,
		MaxSearchSteps: maxSteps,
	}, nil
}

func loadR2() (*R2Config, error) {
	r2 := R2Config{
		AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		BucketName:      os.Getenv("R2_BUCKET_NAME"),
		PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}
	fields := []string{r2.AccountID, r2.AccessKeyID, r2.SecretAccessKey, r2.BucketName, r2.PublicBaseURL}

	set := 0
	for _, f := range fields {
		if f != "" {
			set++
		}
	}
	switch set {
	case 0:
		return nil, nil
	case len(fields):
		return &r2, nil
	default:
		return nil, fmt.Errorf("R2 storage is partially configured: set all R2_* variables or none")
	}
}

func intEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
