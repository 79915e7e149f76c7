package user

import (
	"errors"
	"strings"

	"meetings-backend/internal/models"
	"meetings-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func fieldError(field, msg string) *fiber.Error {
	return fiber.NewError(fiber.StatusBadRequest, field+": "+msg)
}

func requireField(field, value string) *fiber.Error {
	if strings.TrimSpace(value) == "" {
		return fieldError(field, validation.MandatoryMsg)
	}
	return nil
}

// normalizeUser aplica la normalización previa a la persistencia.
func normalizeUser(u *models.User) {
	u.Surnames = validation.NormalizeText(u.Surnames)
	u.Name = validation.NormalizeText(u.Name)
	u.Username = validation.NormalizeUsername(u.Username)
	u.Email = strings.TrimSpace(u.Email)
	u.Avatar = strings.TrimSpace(u.Avatar)
}

// validateUser ejecuta las comprobaciones en orden; el primer fallo aborta
// la escritura completa. La unicidad excluye la propia fila para que las
// actualizaciones parciales no choquen consigo mismas.
func validateUser(db *gorm.DB, u *models.User) *fiber.Error {
	checks := []func() *fiber.Error{
		func() *fiber.Error { return requireField("surnames", u.Surnames) },
		func() *fiber.Error { return requireField("name", u.Name) },
		func() *fiber.Error { return requireField("username", u.Username) },
		func() *fiber.Error { return requireField("email", u.Email) },
		func() *fiber.Error { return requireField("password", u.PasswordHash) },
		func() *fiber.Error {
			if !validation.IsEmail(u.Email) {
				return fieldError("email", validation.InvalidEmailMsg)
			}
			return nil
		},
		func() *fiber.Error { return uniqueUserField(db, u, "username", u.Username) },
		func() *fiber.Error { return uniqueUserField(db, u, "email", u.Email) },
		func() *fiber.Error {
			if u.Avatar == "" {
				return nil
			}
			return uniqueUserField(db, u, "avatar", u.Avatar)
		},
	}

	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func uniqueUserField(db *gorm.DB, u *models.User, field, value string) *fiber.Error {
	var existing models.User
	err := db.Where(field+" = ? AND id <> ?", value, u.ID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError,
			"Se ha producido un error al comprobar la unicidad del campo "+field)
	}
	return fieldError(field, validation.UniqueMsg)
}
