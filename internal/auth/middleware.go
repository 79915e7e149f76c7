package auth

import (
	"fmt"
	"strings"

	"meetings-backend/internal/config"
	"meetings-backend/internal/database"
	"meetings-backend/internal/models"
	"meetings-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const ctxUserKey = "authUser"

// Authenticate resuelve el portador del token contra la base de datos y
// deja el usuario en el contexto de la petición. Se recarga la fila en
// cada petición: un usuario eliminado con un token todavía activo deja de
// estar autenticado, y los cambios de rol surten efecto inmediato.
//
// Con required=false la resolución es opcional: cualquier fallo deja al
// llamante como anónimo en lugar de responder 401.
func Authenticate(cfg *config.Config, required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := resolveUser(cfg, c.Get("Authorization"))
		if err != nil && required {
			return fiber.NewError(fiber.StatusUnauthorized, validation.LoginMsg(""))
		}
		if user != nil {
			c.Locals(ctxUserKey, user)
		}
		return c.Next()
	}
}

func resolveUser(cfg *config.Config, header string) (*models.User, error) {
	if header == "" {
		return nil, fmt.Errorf("falta la cabecera Authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, fmt.Errorf("la cabecera Authorization debe ser 'Bearer <token>'")
	}

	token, err := jwt.ParseWithClaims(parts[1], &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma no válido")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("token no válido o caducado")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("token no válido")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		return nil, fmt.Errorf("el usuario del token ya no existe")
	}
	return &user, nil
}

// CurrentUser devuelve el usuario autenticado o nil si la petición es
// anónima.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(ctxUserKey).(*models.User)
	return user
}
