package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	HTTPPort      string
	DatabaseDSN   string
	JWTSecret     string
	TokenTTL      time.Duration
	CORSOrigins   string
	UploadDir     string // Raíz en disco de carteles y avatares
	UploadBaseURL string
	MaxUploadMB   int
	MinEventYear  int

	// Credenciales con las que se siembra el "superadmin" si no existe
	SuperAdminUsername string
	SuperAdminEmail    string
	SuperAdminPassword string
}

func Load() *Config {
	// Un .env ausente no es un error: en producción todo llega por entorno
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:           getEnv("HTTP_PORT", "3000"),
		DatabaseDSN:        getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=meetings port=5432 sslmode=disable"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		TokenTTL:           time.Duration(getEnvInt("TOKEN_TTL_MINUTES", 15)) * time.Minute,
		CORSOrigins:        getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
		UploadBaseURL:      getEnv("UPLOAD_BASE_URL", "/uploads"),
		MaxUploadMB:        getEnvInt("MAX_UPLOAD_MB", 5),
		MinEventYear:       getEnvInt("MIN_EVENT_YEAR", 2025),
		SuperAdminUsername: getEnv("SUPERADMIN_USERNAME", "superadmin"),
		SuperAdminEmail:    getEnv("SUPERADMIN_EMAIL", "superadmin@meetings.local"),
		SuperAdminPassword: getEnv("SUPERADMIN_PASSWORD", ""),
	}

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("La variable de entorno JWT_SECRET no está definida")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal().Msg("JWT_SECRET debe tener al menos 32 caracteres")
	}
	if cfg.SuperAdminPassword == "" {
		log.Warn().Msg("SUPERADMIN_PASSWORD no está definida; no se sembrará el superadmin")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", v).Msg("Valor de entorno no numérico, se usa el valor por defecto")
	}
	return def
}
