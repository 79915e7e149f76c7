package user

import (
	"errors"

	"meetings-backend/internal/models"
	"meetings-backend/internal/policy"
	"meetings-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type cascadeResult struct {
	removedAttendee  bool
	reassignedAuthor bool
	avatar           string
}

// deleteUserCascade ejecuta el protocolo de borrado de un usuario en una
// única transacción: borra la fila, lo elimina como asistente de todos los
// eventos y reasigna al superadmin la autoría de los eventos que hubiera
// creado. Cualquier fallo intermedio revierte la transacción completa; los
// lectores concurrentes nunca observan un estado parcial.
//
// El borrado del avatar en el blob store queda fuera: no es transaccional
// con la base de datos y lo resuelve el llamante tras el commit.
func deleteUserCascade(db *gorm.DB, caller *models.User, targetID uint, rawID string) (*cascadeResult, *fiber.Error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError,
			"Se ha producido un error al eliminar el usuario")
	}

	var target models.User
	if err := tx.First(&target, "id = ?", targetID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, validation.UserNotFoundMsg(rawID))
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError,
			"Se ha producido un error al eliminar el usuario")
	}

	// Con la fila cargada ya se conoce el rol del objetivo: el superadmin
	// no se puede eliminar, sea quien sea el llamante
	if ferr := policy.Authorize(caller, policy.ActionDeleteUser, policy.Target{UserID: target.ID, Role: target.Role}); ferr != nil {
		tx.Rollback()
		return nil, ferr
	}

	if err := tx.Delete(&models.User{}, "id = ?", targetID).Error; err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusInternalServerError,
			"Se ha producido un error al eliminar el usuario")
	}

	var attendeeRows int64
	if err := tx.Table("event_users").Where("user_id = ?", targetID).Count(&attendeeRows).Error; err != nil {
		tx.Rollback()
		return nil, cascadeError()
	}
	var authoredRows int64
	if err := tx.Model(&models.Event{}).Where("author_id = ?", targetID).Count(&authoredRows).Error; err != nil {
		tx.Rollback()
		return nil, cascadeError()
	}

	if attendeeRows > 0 {
		if err := tx.Exec("DELETE FROM event_users WHERE user_id = ?", targetID).Error; err != nil {
			tx.Rollback()
			return nil, cascadeError()
		}
	}

	if authoredRows > 0 {
		var superAdmin models.User
		if err := tx.First(&superAdmin, "role = ?", models.RoleSuperAdmin).Error; err != nil {
			tx.Rollback()
			return nil, cascadeError()
		}
		if err := tx.Model(&models.Event{}).Where("author_id = ?", targetID).
			Update("author_id", superAdmin.ID).Error; err != nil {
			tx.Rollback()
			return nil, cascadeError()
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError,
			"Se ha producido un error al eliminar el usuario")
	}

	return &cascadeResult{
		removedAttendee:  attendeeRows > 0,
		reassignedAuthor: authoredRows > 0,
		avatar:           target.Avatar,
	}, nil
}

func cascadeError() *fiber.Error {
	return fiber.NewError(fiber.StatusInternalServerError,
		"Se ha producido un error al eliminar el usuario como asistente a los eventos o como autor de sus eventos")
}
