package database

import (
	"meetings-backend/internal/config"
	"meetings-backend/internal/models"
	"meetings-backend/internal/validation"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("No se ha podido conectar con la base de datos")
	}

	if err := DB.AutoMigrate(&models.User{}, &models.Event{}); err != nil {
		log.Fatal().Err(err).Msg("Error en la migración de la base de datos")
	}

	// La unicidad de cartel y avatar sólo aplica cuando el campo no está
	// vacío; AutoMigrate no sabe declarar índices únicos parciales
	partialIndexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_avatar_nonempty ON users (avatar) WHERE avatar <> ''`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_events_poster_nonempty ON events (poster) WHERE poster <> ''`,
	}
	for _, stmt := range partialIndexes {
		if err := DB.Exec(stmt).Error; err != nil {
			log.Fatal().Err(err).Msg("No se ha podido crear el índice único parcial")
		}
	}

	seedSuperAdmin(cfg)

	log.Info().Msg("Conexión con la base de datos realizada correctamente")
}

// seedSuperAdmin garantiza que exista el único usuario "superadmin": la
// cascada de borrado de usuarios reasigna a él la autoría de los eventos.
func seedSuperAdmin(cfg *config.Config) {
	var count int64
	DB.Model(&models.User{}).Where("role = ?", models.RoleSuperAdmin).Count(&count)
	if count > 0 {
		return
	}
	if cfg.SuperAdminPassword == "" {
		log.Warn().Msg("No existe ningún superadmin y SUPERADMIN_PASSWORD está vacía")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SuperAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("No se ha podido cifrar la contraseña del superadmin")
	}

	admin := models.User{
		Surnames:     "Meetings",
		Name:         "Superadmin",
		Username:     validation.NormalizeUsername(cfg.SuperAdminUsername),
		Email:        cfg.SuperAdminEmail,
		PasswordHash: string(hash),
		Role:         models.RoleSuperAdmin,
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Fatal().Err(err).Msg("No se ha podido crear el superadmin")
	}
	log.Info().Str("username", admin.Username).Msg("Superadmin creado")
}
