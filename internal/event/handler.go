package event

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"meetings-backend/internal/auth"
	"meetings-backend/internal/blob"
	"meetings-backend/internal/config"
	"meetings-backend/internal/database"
	"meetings-backend/internal/models"
	"meetings-backend/internal/policy"
	"meetings-backend/internal/upload"
	"meetings-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const updatedAttendeesMsg = "Asistentes al evento actualizados correctamente"

type CreateRequest struct {
	Title        string `json:"title" form:"title"`
	Poster       string `json:"poster" form:"poster"`
	Date         string `json:"date" form:"date"`
	Time         string `json:"time" form:"time"`
	Headquarters string `json:"headquarters" form:"headquarters"`
	Description  string `json:"description" form:"description"`
}

// Los campos ausentes conservan su valor: semántica merge-patch.
type UpdateRequest struct {
	Title        *string `json:"title" form:"title"`
	Poster       *string `json:"poster" form:"poster"`
	Date         *string `json:"date" form:"date"`
	Time         *string `json:"time" form:"time"`
	Headquarters *string `json:"headquarters" form:"headquarters"`
	Description  *string `json:"description" form:"description"`
}

func (r *UpdateRequest) isEmpty() bool {
	return r.Title == nil && r.Poster == nil && r.Date == nil &&
		r.Time == nil && r.Headquarters == nil && r.Description == nil
}

func sortParams(c *fiber.Ctx) (field, order string) {
	field = strings.ToLower(strings.TrimSpace(c.Query("field", validation.SortFieldTitle)))
	order = strings.ToLower(strings.TrimSpace(c.Query("order", validation.OrderAsc)))
	return field, order
}

func loadEvent(db *gorm.DB, id uint, rawID string) (*models.Event, *fiber.Error) {
	var ev models.Event
	err := db.Preload("Users").Preload("Author").First(&ev, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, validation.EventNotFoundMsg(rawID))
	}
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError,
			"Se ha producido un error al consultar el evento")
	}
	return &ev, nil
}

// GET /event/get/all/?field=title|date&order=asc|desc
func ListEventsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := auth.CurrentUser(c)
		field, order := sortParams(c)

		var events []models.Event
		if err := database.DB.Preload("Users").Preload("Author").Find(&events).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError,
				"Se ha producido un error al consultar los eventos")
		}

		responses := buildResponses(caller, events, field, order)
		if len(responses) == 0 {
			return c.JSON(fiber.Map{"msg": "No se han encontrado eventos", "data": responses})
		}
		return c.JSON(fiber.Map{"data": responses})
	}
}

// GET /event/get/id/:id
func GetEventHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := auth.CurrentUser(c)

		rawID := c.Params("id")
		id, ok := validation.ParseID(rawID)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, validation.InvalidIDMsg)
		}

		ev, ferr := loadEvent(database.DB, id, rawID)
		if ferr != nil {
			return ferr
		}
		return c.JSON(fiber.Map{"data": buildResponse(caller, ev)})
	}
}

// GET /event/get/title/:title — búsqueda por subcadena insensible a tildes,
// minúsculas y mayúsculas sobre el título normalizado.
func SearchEventsByTitleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := auth.CurrentUser(c)
		field, order := sortParams(c)

		query := c.Params("title")
		if decoded, err := url.QueryUnescape(query); err == nil {
			query = decoded
		}

		var events []models.Event
		if err := database.DB.Preload("Users").Preload("Author").Find(&events).Error; err != nil {
			return searchError(query)
		}

		matches := make([]models.Event, 0, len(events))
		for i := range events {
			if validation.MatchesTitle(events[i].Title, query) {
				matches = append(matches, events[i])
			}
		}

		responses := buildResponses(caller, matches, field, order)
		if len(responses) == 0 {
			return c.JSON(fiber.Map{
				"msg": fmt.Sprintf("No se han encontrado eventos cuyo título contenga %q",
					strings.ToLower(validation.NormalizeText(query))),
				"data": responses,
			})
		}
		return c.JSON(fiber.Map{"data": responses})
	}
}

func searchError(query string) *fiber.Error {
	return fiber.NewError(fiber.StatusInternalServerError,
		fmt.Sprintf("Se ha producido un error al consultar los eventos cuyo título contenga %q", query))
}

// GET /event/get/user-id/:id — eventos a los que asiste el usuario.
func ListEventsByUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := auth.CurrentUser(c)
		field, order := sortParams(c)

		rawID := c.Params("id")
		id, ok := validation.ParseID(rawID)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, validation.InvalidIDMsg)
		}
		if ferr := policy.Authorize(caller, policy.ActionListUserEvents, policy.Target{UserID: id}); ferr != nil {
			return ferr
		}

		var events []models.Event
		err := database.DB.Preload("Users").Preload("Author").
			Joins("JOIN event_users ON event_users.event_id = events.id").
			Where("event_users.user_id = ?", id).
			Find(&events).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError,
				"Se ha producido un error al consultar los eventos del usuario")
		}

		responses := buildResponses(caller, events, field, order)
		if len(responses) == 0 {
			return c.JSON(fiber.Map{
				"msg": fmt.Sprintf(
					"No se han encontrado eventos con el identificador %q en alguno de sus usuarios", rawID),
				"data": responses,
			})
		}
		return c.JSON(fiber.Map{"data": responses})
	}
}

// POST /event/create/ — el autor es el creador y la lista de asistentes
// empieza vacía.
func CreateEventHandler(cfg *config.Config, store blob.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := auth.CurrentUser(c)
		if ferr := policy.Authorize(caller, policy.ActionCreateEvent, policy.Target{}); ferr != nil {
			return ferr
		}

		var body CreateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición no válido")
		}

		ev := models.Event{
			Title:        body.Title,
			Poster:       body.Poster,
			Date:         body.Date,
			Time:         body.Time,
			Headquarters: body.Headquarters,
			Description:  body.Description,
			AuthorID:     caller.ID,
		}
		normalizeEvent(&ev)
		if ferr := validateEvent(database.DB, &ev, cfg.MinEventYear); ferr != nil {
			return ferr
		}

		fileName, data, ferr := upload.Read(c, "poster", cfg.MaxUploadMB)
		if ferr != nil {
			return ferr
		}
		uploadedRef := ""
		if data != nil {
			ref, err := store.Save(blob.EventFolder, fileName, data)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError,
					"Se ha producido un error al subir el cartel del evento")
			}
			ev.Poster = ref
			uploadedRef = ref
		}

		if err := database.DB.Create(&ev).Error; err != nil {
			// El blob recién subido quedaría huérfano
			blob.DeleteQuietly(store, uploadedRef, "Se ha producido un error al crear el evento")
			return fiber.NewError(fiber.StatusInternalServerError,
				"Se ha producido un error al crear el evento")
		}

		created, ferr := loadEvent(database.DB, ev.ID, strconv.FormatUint(uint64(ev.ID), 10))
		if ferr != nil {
			return ferr
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"msg":  "Evento creado correctamente",
			"data": buildResponse(caller, created),
		})
	}
}

// PUT /event/update/id/:id
func UpdateEventHandler(cfg *config.Config, store blob.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := auth.CurrentUser(c)

		rawID := c.Params("id")
		id, ok := validation.ParseID(rawID)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, validation.InvalidIDMsg)
		}

		ev, ferr := loadEvent(database.DB, id, rawID)
		if ferr != nil {
			return ferr
		}
		if ferr := policy.Authorize(caller, policy.ActionUpdateEvent, policy.Target{AuthorID: ev.AuthorID}); ferr != nil {
			return ferr
		}

		var body UpdateRequest
		if err := c.BodyParser(&body); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición no válido")
		}
		fileName, data, ferr := upload.Read(c, "poster", cfg.MaxUploadMB)
		if ferr != nil {
			return ferr
		}
		if body.isEmpty() && data == nil {
			return fiber.NewError(fiber.StatusBadRequest,
				"No se ha introducido ningún dato para actualizar el evento")
		}

		oldPoster := ev.Poster
		if body.Title != nil {
			ev.Title = *body.Title
		}
		if body.Poster != nil {
			ev.Poster = *body.Poster
		}
		if body.Date != nil {
			ev.Date = *body.Date
		}
		if body.Time != nil {
			ev.Time = *body.Time
		}
		if body.Headquarters != nil {
			ev.Headquarters = *body.Headquarters
		}
		if body.Description != nil {
			ev.Description = *body.Description
		}

		uploadedRef := ""
		if data != nil {
			ref, err := store.Save(blob.EventFolder, fileName, data)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError,
					"Se ha producido un error al subir el cartel del evento")
			}
			ev.Poster = ref
			uploadedRef = ref
		}

		normalizeEvent(ev)
		if ferr := validateEvent(database.DB, ev, cfg.MinEventYear); ferr != nil {
			blob.DeleteQuietly(store, uploadedRef, "Se ha producido un error al actualizar el evento")
			return ferr
		}

		// Al sustituirse el cartel se elimina el anterior del blob store
		replacesPoster := ev.Poster != oldPoster && ev.Poster != ""
		if replacesPoster && oldPoster != "" {
			blob.DeleteQuietly(store, oldPoster, "Actualización del cartel del evento")
		}

		if err := database.DB.Omit(clause.Associations).Save(ev).Error; err != nil {
			blob.DeleteQuietly(store, uploadedRef, "Se ha producido un error al actualizar el evento")
			return fiber.NewError(fiber.StatusInternalServerError,
				"Se ha producido un error al actualizar el evento")
		}

		updated, ferr := loadEvent(database.DB, ev.ID, rawID)
		if ferr != nil {
			return ferr
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"msg":  "Evento actualizado correctamente",
			"data": buildResponse(caller, updated),
		})
	}
}

// PUT /event/attend/id/:id — un usuario sólo puede apuntarse a sí mismo;
// la asistencia repetida no duplica la fila.
func AttendEventHandler() fiber.Handler {
	return attendanceHandler(func(ev *models.Event, caller *models.User) error {
		for i := range ev.Users {
			if ev.Users[i].ID == caller.ID {
				return nil
			}
		}
		return database.DB.Exec(
			"INSERT INTO event_users (event_id, user_id) VALUES (?, ?)", ev.ID, caller.ID).Error
	})
}

// PUT /event/unattend/id/:id — un usuario sólo puede borrarse a sí mismo.
func UnattendEventHandler() fiber.Handler {
	return attendanceHandler(func(ev *models.Event, caller *models.User) error {
		return database.DB.Exec(
			"DELETE FROM event_users WHERE event_id = ? AND user_id = ?", ev.ID, caller.ID).Error
	})
}

func attendanceHandler(mutate func(*models.Event, *models.User) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := auth.CurrentUser(c)

		rawID := c.Params("id")
		id, ok := validation.ParseID(rawID)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, validation.InvalidIDMsg)
		}

		ev, ferr := loadEvent(database.DB, id, rawID)
		if ferr != nil {
			return ferr
		}
		if ferr := policy.Authorize(caller, policy.ActionAttendEvent, policy.Target{UserID: caller.ID}); ferr != nil {
			return ferr
		}

		if err := mutate(ev, caller); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError,
				"Se ha producido un error al actualizar los asistentes al evento")
		}

		updated, ferr := loadEvent(database.DB, id, rawID)
		if ferr != nil {
			return ferr
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"msg":  updatedAttendeesMsg,
			"data": buildResponse(caller, updated),
		})
	}
}

// DELETE /event/delete/id/:id — borra la fila y sus asistencias en una
// transacción y después solicita el borrado del cartel, best-effort.
func DeleteEventHandler(store blob.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := auth.CurrentUser(c)

		rawID := c.Params("id")
		id, ok := validation.ParseID(rawID)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, validation.InvalidIDMsg)
		}

		ev, ferr := loadEvent(database.DB, id, rawID)
		if ferr != nil {
			return ferr
		}
		if ferr := policy.Authorize(caller, policy.ActionDeleteEvent, policy.Target{AuthorID: ev.AuthorID}); ferr != nil {
			return ferr
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return deleteError()
		}
		if err := tx.Exec("DELETE FROM event_users WHERE event_id = ?", ev.ID).Error; err != nil {
			tx.Rollback()
			return deleteError()
		}
		if err := tx.Delete(&models.Event{}, "id = ?", ev.ID).Error; err != nil {
			tx.Rollback()
			return deleteError()
		}
		if err := tx.Commit().Error; err != nil {
			return deleteError()
		}

		msg := "Evento eliminado correctamente"
		blob.DeleteQuietly(store, ev.Poster, msg)

		return c.JSON(fiber.Map{"msg": msg})
	}
}

func deleteError() *fiber.Error {
	return fiber.NewError(fiber.StatusInternalServerError,
		"Se ha producido un error al eliminar el evento")
}
