package user

import (
	"testing"

	"meetings-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Una base con nombre por test: el pool de conexiones comparte la misma
	// base en memoria y cada test parte de cero
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Event{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Surnames:     "Apellidos",
		Name:         "Nombre",
		Username:     username,
		PasswordHash: "x",
		Email:        username + "@ejemplo.com",
		Role:         role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedEvent(t *testing.T, db *gorm.DB, title string, authorID uint) *models.Event {
	t.Helper()
	ev := &models.Event{
		Title:        title,
		Date:         "01/06/2025",
		Time:         "10:00",
		Headquarters: "Sede central",
		Description:  "Descripción",
		AuthorID:     authorID,
	}
	require.NoError(t, db.Create(ev).Error)
	return ev
}

func attend(t *testing.T, db *gorm.DB, eventID, userID uint) {
	t.Helper()
	require.NoError(t, db.Exec(
		"INSERT INTO event_users (event_id, user_id) VALUES (?, ?)", eventID, userID).Error)
}

func countJoinRows(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table("event_users").Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestDeleteUserCascade(t *testing.T) {
	db := setupDB(t)
	super := seedUser(t, db, "superadmin", models.RoleSuperAdmin)
	caller := seedUser(t, db, "admin", models.RoleAdmin)
	target := seedUser(t, db, "objetivo", models.RoleUser)
	target.Avatar = "/uploads/Meetings/Users/avatar.png"
	require.NoError(t, db.Save(target).Error)

	authored := seedEvent(t, db, "Evento propio", target.ID)
	other := seedEvent(t, db, "Evento ajeno", caller.ID)
	attend(t, db, authored.ID, target.ID)
	attend(t, db, other.ID, target.ID)
	attend(t, db, other.ID, caller.ID)

	result, ferr := deleteUserCascade(db, caller, target.ID, "3")
	require.Nil(t, ferr)
	assert.True(t, result.removedAttendee)
	assert.True(t, result.reassignedAuthor)
	assert.Equal(t, target.Avatar, result.avatar)

	var remaining int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", target.ID).Count(&remaining).Error)
	assert.Zero(t, remaining, "la fila del usuario ha desaparecido")

	assert.Zero(t, countJoinRows(t, db, target.ID), "sin asistencias del usuario borrado")
	assert.Equal(t, int64(1), countJoinRows(t, db, caller.ID), "las asistencias ajenas se conservan")

	var reloaded models.Event
	require.NoError(t, db.First(&reloaded, "id = ?", authored.ID).Error)
	assert.Equal(t, super.ID, reloaded.AuthorID, "el superadmin hereda la autoría")
}

func TestDeleteUserCascadeWithoutRelations(t *testing.T) {
	db := setupDB(t)
	seedUser(t, db, "superadmin", models.RoleSuperAdmin)
	caller := seedUser(t, db, "admin", models.RoleAdmin)
	target := seedUser(t, db, "objetivo", models.RoleUser)

	result, ferr := deleteUserCascade(db, caller, target.ID, "3")
	require.Nil(t, ferr)
	assert.False(t, result.removedAttendee)
	assert.False(t, result.reassignedAuthor)
}

func TestDeleteUserCascadeNotFound(t *testing.T) {
	db := setupDB(t)
	caller := seedUser(t, db, "admin", models.RoleAdmin)

	_, ferr := deleteUserCascade(db, caller, 999, "999")
	require.NotNil(t, ferr)
	assert.Equal(t, fiber.StatusNotFound, ferr.Code)
}

func TestDeleteUserCascadeProtectsSuperAdmin(t *testing.T) {
	db := setupDB(t)
	super := seedUser(t, db, "superadmin", models.RoleSuperAdmin)
	caller := seedUser(t, db, "admin", models.RoleAdmin)

	_, ferr := deleteUserCascade(db, caller, super.ID, "1")
	require.NotNil(t, ferr)
	assert.Equal(t, fiber.StatusForbidden, ferr.Code)

	var remaining int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", super.ID).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining, "la transacción se revierte completa")
}

func TestDeleteUserCascadeSelfDelete(t *testing.T) {
	db := setupDB(t)
	seedUser(t, db, "superadmin", models.RoleSuperAdmin)
	caller := seedUser(t, db, "admin", models.RoleAdmin)

	_, ferr := deleteUserCascade(db, caller, caller.ID, "2")
	require.NotNil(t, ferr)
	assert.Equal(t, fiber.StatusForbidden, ferr.Code)

	var remaining int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", caller.ID).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
}
