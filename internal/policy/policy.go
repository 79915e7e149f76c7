// Package policy decide, para cada acción, si el llamante puede ejecutarla
// y qué campos puede ver en la respuesta. Las reglas forman una lista
// ordenada que se evalúa en orden de precedencia; no tiene efectos
// secundarios.
package policy

import (
	"meetings-backend/internal/models"
	"meetings-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type Action string

const (
	ActionListEvents     Action = "event.list"
	ActionReadEvent      Action = "event.read"
	ActionListUserEvents Action = "event.listByUser"
	ActionCreateEvent    Action = "event.create"
	ActionUpdateEvent    Action = "event.update"
	ActionDeleteEvent    Action = "event.delete"
	ActionAttendEvent    Action = "event.attend"
	ActionListUsers      Action = "user.list"
	ActionReadUser       Action = "user.read"
	ActionCreateUser     Action = "user.create"
	ActionUpdateUser     Action = "user.update"
	ActionDeleteUser     Action = "user.delete"
	ActionLogin          Action = "user.login"
)

// Target describe el recurso sobre el que se actúa, con lo que el llamante
// conozca en ese punto: antes de cargar la fila puede faltar el rol.
type Target struct {
	UserID   uint        // usuario objetivo o dueño del recurso
	AuthorID uint        // autor del evento objetivo
	Role     models.Role // rol del usuario objetivo
}

type request struct {
	caller *models.User
	action Action
	target Target
}

// Acciones permitidas sin identidad.
var anonymousAllowed = map[Action]bool{
	ActionListEvents: true,
	ActionReadEvent:  true,
	ActionLogin:      true,
	ActionCreateUser: true, // registro
}

// Acciones reservadas a "admin"/"superadmin", con el motivo de la denegación.
var adminGated = map[Action]string{
	ActionCreateEvent: `Si no eres un usuario "admin" no puedes crear eventos`,
	ActionListUsers:   `Si no eres un usuario "admin" no puedes consultar los usuarios`,
	ActionCreateUser:  `Si no eres un usuario "admin" no puedes crear otros usuarios`,
	ActionDeleteUser:  `Si no eres un usuario "admin" no puedes eliminar usuarios`,
}

// Acciones limitadas al propio usuario cuando el llamante es "user".
var selfScoped = map[Action]string{
	ActionReadUser:       `Si no eres un usuario "admin" sólo puedes consultar tu propio usuario`,
	ActionUpdateUser:     `Si no eres un usuario "admin" sólo puedes actualizar tu propio usuario`,
	ActionListUserEvents: `Si no eres un usuario "admin" sólo puedes consultar tus propios eventos`,
}

type rule struct {
	name  string
	check func(request) (*fiber.Error, bool)
}

// Reglas en orden de precedencia. "superadmin" no necesita una regla de
// bypass: no es "user", así que nunca cae en admin-gate ni en self-scope,
// y la regla de autoría lo exceptúa explícitamente.
var rules = []rule{
	{
		name: "anonymous",
		check: func(r request) (*fiber.Error, bool) {
			if r.caller != nil {
				return nil, false
			}
			if anonymousAllowed[r.action] {
				return nil, true
			}
			return fiber.NewError(fiber.StatusUnauthorized, validation.LoginMsg("")), true
		},
	},
	{
		name: "admin-gate",
		check: func(r request) (*fiber.Error, bool) {
			reason, gated := adminGated[r.action]
			if gated && r.caller.Role == models.RoleUser {
				return fiber.NewError(fiber.StatusForbidden, validation.NotAllowedActionMsg(reason)), true
			}
			return nil, false
		},
	},
	{
		name: "self-scope",
		check: func(r request) (*fiber.Error, bool) {
			reason, scoped := selfScoped[r.action]
			if scoped && r.caller.Role == models.RoleUser && r.caller.ID != r.target.UserID {
				return fiber.NewError(fiber.StatusForbidden, validation.NotAllowedActionMsg(reason)), true
			}
			return nil, false
		},
	},
	{
		name: "event-author",
		check: func(r request) (*fiber.Error, bool) {
			if r.action != ActionUpdateEvent && r.action != ActionDeleteEvent {
				return nil, false
			}
			if r.caller.Role != models.RoleSuperAdmin && r.caller.ID != r.target.AuthorID {
				return fiber.NewError(fiber.StatusForbidden,
					validation.NotAllowedActionMsg("No eres el autor del evento")), true
			}
			return nil, false
		},
	},
	{
		name: "self-delete",
		check: func(r request) (*fiber.Error, bool) {
			if r.action == ActionDeleteUser && r.caller.ID == r.target.UserID {
				return fiber.NewError(fiber.StatusForbidden,
					validation.NotAllowedActionMsg("Un usuario no se puede eliminar a sí mismo")), true
			}
			return nil, false
		},
	},
	{
		name: "protected-target",
		check: func(r request) (*fiber.Error, bool) {
			if r.target.Role != models.RoleSuperAdmin {
				return nil, false
			}
			switch r.action {
			case ActionUpdateUser:
				return fiber.NewError(fiber.StatusForbidden,
					`El usuario "superadmin" no se puede actualizar`), true
			case ActionDeleteUser:
				return fiber.NewError(fiber.StatusForbidden,
					`El usuario "superadmin" no se puede eliminar`), true
			}
			return nil, false
		},
	},
}

// Authorize evalúa la tabla de decisión. Devuelve nil si la acción está
// permitida. Puede invocarse más de una vez por petición a medida que se
// conoce el objetivo (por ejemplo, tras cargar la fila dentro de una
// transacción); las reglas son idempotentes.
func Authorize(caller *models.User, action Action, target Target) *fiber.Error {
	r := request{caller: caller, action: action, target: target}
	for _, rule := range rules {
		if err, decided := rule.check(r); decided {
			return err
		}
	}
	return nil
}

// CanSeeAttendees: los asistentes de un evento sólo pueden ser visualizados
// por un usuario "admin" o por un asistente del propio evento.
func CanSeeAttendees(caller *models.User, ev *models.Event) bool {
	if caller == nil {
		return false
	}
	if caller.Role.IsAdmin() {
		return true
	}
	for i := range ev.Users {
		if ev.Users[i].ID == caller.ID {
			return true
		}
	}
	return false
}

// CanSeeAuthor: el autor de un evento sólo puede ser visualizado por un
// usuario "admin".
func CanSeeAuthor(caller *models.User) bool {
	return caller != nil && caller.Role.IsAdmin()
}
