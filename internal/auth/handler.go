package auth

import (
	"strings"

	"meetings-backend/internal/config"
	"meetings-backend/internal/database"
	"meetings-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const invalidUserPasswordMsg = "Usuario o contraseña incorrectos"

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// POST /user/login/
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición no válido")
		}

		if strings.TrimSpace(body.Username) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Se debe introducir el usuario")
		}
		if strings.TrimSpace(body.Password) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Se debe introducir la contraseña")
		}

		var user models.User
		if err := database.DB.First(&user, "username = ?", body.Username).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, invalidUserPasswordMsg)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, invalidUserPasswordMsg)
		}

		token, expiresAt, err := GenerateToken(cfg.JWTSecret, cfg.TokenTTL, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se ha podido generar el token")
		}

		return c.JSON(fiber.Map{
			"data": fiber.Map{
				"token":     token,
				"expiresAt": expiresAt.Format("02/01/2006 15:04:05"),
				"id":        user.ID,
				"username":  user.Username,
				"name":      user.Name,
				"role":      user.Role,
			},
		})
	}
}
