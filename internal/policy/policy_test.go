package policy

import (
	"testing"

	"meetings-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func regular(id uint) *models.User {
	return &models.User{ID: id, Role: models.RoleUser}
}

func admin(id uint) *models.User {
	return &models.User{ID: id, Role: models.RoleAdmin}
}

func superAdmin(id uint) *models.User {
	return &models.User{ID: id, Role: models.RoleSuperAdmin}
}

func TestAnonymousAccess(t *testing.T) {
	allowed := []Action{ActionListEvents, ActionReadEvent, ActionLogin, ActionCreateUser}
	for _, action := range allowed {
		assert.Nil(t, Authorize(nil, action, Target{}), "acción %s", action)
	}

	denied := []Action{
		ActionListUserEvents, ActionCreateEvent, ActionUpdateEvent, ActionDeleteEvent,
		ActionAttendEvent, ActionListUsers, ActionReadUser, ActionUpdateUser, ActionDeleteUser,
	}
	for _, action := range denied {
		err := Authorize(nil, action, Target{})
		require.NotNil(t, err, "acción %s", action)
		assert.Equal(t, fiber.StatusUnauthorized, err.Code, "acción %s", action)
	}
}

func TestAdminGate(t *testing.T) {
	gated := []Action{ActionCreateEvent, ActionListUsers, ActionCreateUser, ActionDeleteUser}
	for _, action := range gated {
		err := Authorize(regular(1), action, Target{UserID: 2})
		require.NotNil(t, err, "acción %s", action)
		assert.Equal(t, fiber.StatusForbidden, err.Code, "acción %s", action)

		assert.Nil(t, Authorize(admin(1), action, Target{UserID: 2}), "acción %s", action)
	}
}

func TestSelfScope(t *testing.T) {
	scoped := []Action{ActionReadUser, ActionUpdateUser, ActionListUserEvents}
	for _, action := range scoped {
		assert.Nil(t, Authorize(regular(1), action, Target{UserID: 1}), "acción %s", action)

		err := Authorize(regular(1), action, Target{UserID: 2})
		require.NotNil(t, err, "acción %s", action)
		assert.Equal(t, fiber.StatusForbidden, err.Code, "acción %s", action)

		assert.Nil(t, Authorize(admin(1), action, Target{UserID: 2}), "acción %s", action)
	}
}

func TestEventAuthor(t *testing.T) {
	for _, action := range []Action{ActionUpdateEvent, ActionDeleteEvent} {
		assert.Nil(t, Authorize(admin(1), action, Target{AuthorID: 1}), "autor")

		err := Authorize(admin(1), action, Target{AuthorID: 2})
		require.NotNil(t, err, "acción %s", action)
		assert.Equal(t, fiber.StatusForbidden, err.Code)

		// El superadmin puede actuar sobre eventos ajenos
		assert.Nil(t, Authorize(superAdmin(3), action, Target{AuthorID: 2}), "acción %s", action)
	}
}

func TestSelfDelete(t *testing.T) {
	err := Authorize(admin(1), ActionDeleteUser, Target{UserID: 1})
	require.NotNil(t, err)
	assert.Equal(t, fiber.StatusForbidden, err.Code)

	err = Authorize(superAdmin(1), ActionDeleteUser, Target{UserID: 1, Role: models.RoleSuperAdmin})
	require.NotNil(t, err)
	assert.Equal(t, fiber.StatusForbidden, err.Code)
}

func TestProtectedTarget(t *testing.T) {
	for _, action := range []Action{ActionUpdateUser, ActionDeleteUser} {
		err := Authorize(admin(1), action, Target{UserID: 2, Role: models.RoleSuperAdmin})
		require.NotNil(t, err, "acción %s", action)
		assert.Equal(t, fiber.StatusForbidden, err.Code, "acción %s", action)

		err = Authorize(superAdmin(1), action, Target{UserID: 2, Role: models.RoleSuperAdmin})
		require.NotNil(t, err, "acción %s", action)
		assert.Equal(t, fiber.StatusForbidden, err.Code, "acción %s", action)
	}
}

func TestAuthorizeIsIdempotent(t *testing.T) {
	// Sin el rol cargado todavía la acción pasa; con el rol cargado se deniega
	caller := admin(1)
	assert.Nil(t, Authorize(caller, ActionDeleteUser, Target{UserID: 2}))
	assert.NotNil(t, Authorize(caller, ActionDeleteUser, Target{UserID: 2, Role: models.RoleSuperAdmin}))
	assert.Nil(t, Authorize(caller, ActionDeleteUser, Target{UserID: 2}))
}

func TestCanSeeAttendees(t *testing.T) {
	ev := &models.Event{Users: []models.User{{ID: 5}}}

	assert.False(t, CanSeeAttendees(nil, ev))
	assert.False(t, CanSeeAttendees(regular(1), ev))
	assert.True(t, CanSeeAttendees(regular(5), ev), "un asistente ve a los demás asistentes")
	assert.True(t, CanSeeAttendees(admin(1), ev))
	assert.True(t, CanSeeAttendees(superAdmin(1), ev))
}

func TestCanSeeAuthor(t *testing.T) {
	assert.False(t, CanSeeAuthor(nil))
	assert.False(t, CanSeeAuthor(regular(1)))
	assert.True(t, CanSeeAuthor(admin(1)))
	assert.True(t, CanSeeAuthor(superAdmin(1)))
}
