package main

import (
	"os"
	"strings"
	"time"

	"meetings-backend/internal/auth"
	"meetings-backend/internal/blob"
	"meetings-backend/internal/config"
	"meetings-backend/internal/database"
	"meetings-backend/internal/event"
	"meetings-backend/internal/user"
	"meetings-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()
	database.Init(cfg)

	store := blob.NewDiskStore(cfg.UploadDir, cfg.UploadBaseURL)

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
		BodyLimit:    (cfg.MaxUploadMB + 1) * 1024 * 1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(splitOrigins(cfg.CORSOrigins), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Static(cfg.UploadBaseURL, cfg.UploadDir)

	registerRoutes(app, cfg, store)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound,
			"Ruta no encontrada"+validation.LineBreak+"Comprueba la URL y sus parámetros")
	})

	log.Info().Str("port", cfg.HTTPPort).Msg("servidor iniciado")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal().Err(err).Msg("el servidor no ha podido arrancar")
	}
}

func registerRoutes(app *fiber.App, cfg *config.Config, store blob.Store) {
	optional := auth.Authenticate(cfg, false)
	required := auth.Authenticate(cfg, true)

	events := app.Group("/event")
	events.Get("/get/all/", optional, event.ListEventsHandler())
	events.Get("/get/id/:id", optional, event.GetEventHandler())
	events.Get("/get/title/:title", optional, event.SearchEventsByTitleHandler())
	events.Get("/get/user-id/:id", required, event.ListEventsByUserHandler())
	events.Post("/create/", required, event.CreateEventHandler(cfg, store))
	events.Put("/update/id/:id", required, event.UpdateEventHandler(cfg, store))
	events.Put("/attend/id/:id", required, event.AttendEventHandler())
	events.Put("/unattend/id/:id", required, event.UnattendEventHandler())
	events.Delete("/delete/id/:id", required, event.DeleteEventHandler(store))

	users := app.Group("/user")
	users.Post("/login/", auth.LoginHandler(cfg))
	users.Get("/get/all/", required, user.ListUsersHandler())
	users.Get("/get/id/:id", required, user.GetUserHandler())
	users.Post("/create/", optional, user.CreateUserHandler(cfg, store))
	users.Put("/update/id/:id", required, user.UpdateUserHandler(cfg, store))
	users.Delete("/delete/id/:id", required, user.DeleteUserHandler(store))
}

// errorHandler serializa todos los errores con la envoltura {msg}. Los
// errores no tipados no exponen su detalle al cliente.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Se ha producido un error inesperado"

	var ferr *fiber.Error
	if e, ok := err.(*fiber.Error); ok {
		ferr = e
	}
	if ferr != nil {
		code = ferr.Code
		msg = ferr.Message
	} else {
		log.Error().Err(err).Str("path", c.Path()).Msg("error inesperado")
	}

	return c.Status(code).JSON(fiber.Map{"msg": msg})
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
