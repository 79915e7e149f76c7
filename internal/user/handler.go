package user

import (
	"errors"
	"sort"

	"meetings-backend/internal/auth"
	"meetings-backend/internal/blob"
	"meetings-backend/internal/config"
	"meetings-backend/internal/database"
	"meetings-backend/internal/models"
	"meetings-backend/internal/policy"
	"meetings-backend/internal/upload"
	"meetings-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CreateRequest struct {
	Surnames string `json:"surnames" form:"surnames"`
	Name     string `json:"name" form:"name"`
	Username string `json:"username" form:"username"`
	Avatar   string `json:"avatar" form:"avatar"`
	Password string `json:"password" form:"password"`
	Email    string `json:"email" form:"email"`
	Role     string `json:"role" form:"role"`
}

// Los campos ausentes conservan su valor: semántica merge-patch.
type UpdateRequest struct {
	Surnames *string `json:"surnames" form:"surnames"`
	Name     *string `json:"name" form:"name"`
	Username *string `json:"username" form:"username"`
	Avatar   *string `json:"avatar" form:"avatar"`
	Password *string `json:"password" form:"password"`
	Email    *string `json:"email" form:"email"`
	Role     *string `json:"role" form:"role"`
}

func (r *UpdateRequest) isEmpty() bool {
	return r.Surnames == nil && r.Name == nil && r.Username == nil &&
		r.Avatar == nil && r.Password == nil && r.Email == nil && r.Role == nil
}

// GET /user/get/all/
func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := auth.CurrentUser(c)
		if ferr := policy.Authorize(caller, policy.ActionListUsers, policy.Target{}); ferr != nil {
			return ferr
		}

		var users []models.User
		if err := database.DB.Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError,
				"Se ha producido un error al consultar los usuarios")
		}

		sort.SliceStable(users, func(i, j int) bool {
			return validation.SortUsers(&users[i], &users[j]) < 0
		})

		responses := make([]*Response, 0, len(users))
		for i := range users {
			resp, err := buildResponse(database.DB, &users[i])
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError,
					"Se ha producido un error al consultar los usuarios")
			}
			responses = append(responses, resp)
		}

		if len(responses) == 0 {
			return c.JSON(fiber.Map{"msg": "No se han encontrado usuarios", "data": responses})
		}
		return c.JSON(fiber.Map{"data": responses})
	}
}

// GET /user/get/id/:id
func GetUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := auth.CurrentUser(c)

		rawID := c.Params("id")
		id, ok := validation.ParseID(rawID)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, validation.InvalidIDMsg)
		}
		if ferr := policy.Authorize(caller, policy.ActionReadUser, policy.Target{UserID: id}); ferr != nil {
			return ferr
		}

		var target models.User
		if err := database.DB.First(&target, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, validation.UserNotFoundMsg(rawID))
			}
			return fiber.NewError(fiber.StatusInternalServerError,
				"Se ha producido un error al consultar el usuario")
		}

		resp, err := buildResponse(database.DB, &target)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError,
				"Se ha producido un error al consultar el usuario")
		}
		return c.JSON(fiber.Map{"data": resp})
	}
}

// POST /user/create/
//
// Sin identidad es el registro (rol forzado a "user"); un admin puede crear
// usuarios con cualquier rol asignable.
func CreateUserHandler(cfg *config.Config, store blob.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := auth.CurrentUser(c)
		if ferr := policy.Authorize(caller, policy.ActionCreateUser, policy.Target{}); ferr != nil {
			return ferr
		}

		var body CreateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición no válido")
		}

		role := models.RoleUser
		if caller != nil && caller.Role.IsAdmin() && body.Role != "" {
			role = models.Role(validation.NormalizeText(body.Role))
			if !role.IsAssignable() {
				return fieldError("role", allowedRolesMsg())
			}
		}

		// La contraseña se valida antes de cifrarla; después ya no sería
		// posible
		if body.Password == "" {
			return fieldError("password", validation.MandatoryMsg)
		}
		if !validation.IsPassword(body.Password) {
			return fiber.NewError(fiber.StatusBadRequest, validation.InvalidPasswordMsg)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError,
				"Se ha producido un error al cifrar la contraseña")
		}

		newUser := models.User{
			Surnames:     body.Surnames,
			Name:         body.Name,
			Username:     body.Username,
			Avatar:       body.Avatar,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         role,
		}
		normalizeUser(&newUser)
		if ferr := validateUser(database.DB, &newUser); ferr != nil {
			return ferr
		}

		fileName, data, ferr := upload.Read(c, "avatar", cfg.MaxUploadMB)
		if ferr != nil {
			return ferr
		}
		uploadedRef := ""
		if data != nil {
			ref, err := store.Save(blob.UserFolder, fileName, data)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError,
					"Se ha producido un error al subir el avatar del usuario")
			}
			newUser.Avatar = ref
			uploadedRef = ref
		}

		if err := database.DB.Create(&newUser).Error; err != nil {
			// El blob recién subido quedaría huérfano
			blob.DeleteQuietly(store, uploadedRef, "Se ha producido un error al crear el usuario")
			return fiber.NewError(fiber.StatusInternalServerError,
				"Se ha producido un error al crear el usuario")
		}

		resp, err := buildResponse(database.DB, &newUser)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError,
				"Se ha producido un error al crear el usuario")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"msg":  "Usuario creado correctamente",
			"data": resp,
		})
	}
}

// PUT /user/update/id/:id
func UpdateUserHandler(cfg *config.Config, store blob.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := auth.CurrentUser(c)

		rawID := c.Params("id")
		id, ok := validation.ParseID(rawID)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, validation.InvalidIDMsg)
		}
		if ferr := policy.Authorize(caller, policy.ActionUpdateUser, policy.Target{UserID: id}); ferr != nil {
			return ferr
		}

		var target models.User
		if err := database.DB.First(&target, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, validation.UserNotFoundMsg(rawID))
			}
			return fiber.NewError(fiber.StatusInternalServerError,
				"Se ha producido un error al actualizar el usuario")
		}
		// Cargada la fila se conoce el rol del objetivo: el superadmin es
		// inmutable
		if ferr := policy.Authorize(caller, policy.ActionUpdateUser, policy.Target{UserID: id, Role: target.Role}); ferr != nil {
			return ferr
		}

		var body UpdateRequest
		if err := c.BodyParser(&body); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición no válido")
		}
		fileName, data, ferr := upload.Read(c, "avatar", cfg.MaxUploadMB)
		if ferr != nil {
			return ferr
		}
		if body.isEmpty() && data == nil {
			return fiber.NewError(fiber.StatusBadRequest,
				"No se ha introducido ningún dato para actualizar el usuario")
		}

		updated := target
		if body.Surnames != nil {
			updated.Surnames = *body.Surnames
		}
		if body.Name != nil {
			updated.Name = *body.Name
		}
		if body.Username != nil {
			updated.Username = *body.Username
		}
		if body.Email != nil {
			updated.Email = *body.Email
		}
		if body.Avatar != nil {
			updated.Avatar = *body.Avatar
		}
		// El rol sólo puede ser actualizado por un admin; para el resto se
		// ignora en silencio
		if body.Role != nil && caller.Role.IsAdmin() {
			role := models.Role(validation.NormalizeText(*body.Role))
			if !role.IsAssignable() {
				return fieldError("role", allowedRolesMsg())
			}
			updated.Role = role
		}
		if body.Password != nil {
			if !validation.IsPassword(*body.Password) {
				return fiber.NewError(fiber.StatusBadRequest, validation.InvalidPasswordMsg)
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError,
					"Se ha producido un error al cifrar la contraseña")
			}
			updated.PasswordHash = string(hash)
		}

		uploadedRef := ""
		if data != nil {
			ref, err := store.Save(blob.UserFolder, fileName, data)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError,
					"Se ha producido un error al subir el avatar del usuario")
			}
			updated.Avatar = ref
			uploadedRef = ref
		}

		normalizeUser(&updated)
		if ferr := validateUser(database.DB, &updated); ferr != nil {
			blob.DeleteQuietly(store, uploadedRef, "Se ha producido un error al actualizar el usuario")
			return ferr
		}

		// Al sustituirse el avatar se elimina el anterior del blob store
		replacesAvatar := updated.Avatar != target.Avatar && updated.Avatar != ""
		if replacesAvatar && target.Avatar != "" {
			blob.DeleteQuietly(store, target.Avatar, "Actualización del avatar del usuario")
		}

		if err := database.DB.Save(&updated).Error; err != nil {
			blob.DeleteQuietly(store, uploadedRef, "Se ha producido un error al actualizar el usuario")
			return fiber.NewError(fiber.StatusInternalServerError,
				"Se ha producido un error al actualizar el usuario")
		}

		resp, err := buildResponse(database.DB, &updated)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError,
				"Se ha producido un error al actualizar el usuario")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"msg":  "Usuario actualizado correctamente",
			"data": resp,
		})
	}
}

// DELETE /user/delete/id/:id
func DeleteUserHandler(store blob.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := auth.CurrentUser(c)

		rawID := c.Params("id")
		id, ok := validation.ParseID(rawID)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, validation.InvalidIDMsg)
		}
		// El auto-borrado se rechaza antes de abrir la transacción
		if ferr := policy.Authorize(caller, policy.ActionDeleteUser, policy.Target{UserID: id}); ferr != nil {
			return ferr
		}

		result, ferr := deleteUserCascade(database.DB, caller, id, rawID)
		if ferr != nil {
			return ferr
		}

		msg := "Usuario eliminado correctamente"
		// Tras el commit: el borrado del blob no es transaccional con la
		// base de datos
		blob.DeleteQuietly(store, result.avatar, msg)

		if result.removedAttendee {
			msg += validation.LineBreak + "Se ha eliminado el usuario como asistente a los eventos"
		}
		if result.reassignedAuthor {
			msg += validation.LineBreak + "Se ha eliminado el usuario como autor de sus eventos"
		}
		return c.JSON(fiber.Map{"msg": msg})
	}
}

func allowedRolesMsg() string {
	return validation.AllowedValuesMsg + ": user - admin"
}
