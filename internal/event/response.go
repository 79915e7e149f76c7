package event

import (
	"sort"

	"meetings-backend/internal/models"
	"meetings-backend/internal/policy"
	"meetings-backend/internal/validation"
)

const timestampLayout = "02/01/2006 15:04:05"

type AttendeeResponse struct {
	ID       uint   `json:"id"`
	Surnames string `json:"surnames"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type AuthorResponse struct {
	ID       uint        `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

type Response struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Poster       string `json:"poster"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Headquarters string `json:"headquarters"`
	Description  string `json:"description"`
	// users y author sólo se serializan cuando el llamante puede verlos
	Users     *[]AttendeeResponse `json:"users,omitempty"`
	Author    *AuthorResponse     `json:"author,omitempty"`
	CreatedAt string              `json:"createdAt"`
	UpdatedAt string              `json:"updatedAt"`
}

// buildResponse proyecta un evento según la identidad del llamante: los
// asistentes sólo son visibles para un admin o para un asistente del propio
// evento, y el autor sólo para un admin.
func buildResponse(caller *models.User, ev *models.Event) Response {
	resp := Response{
		ID:           ev.ID,
		Title:        ev.Title,
		Poster:       ev.Poster,
		Date:         ev.Date,
		Time:         ev.Time,
		Headquarters: ev.Headquarters,
		Description:  ev.Description,
		CreatedAt:    ev.CreatedAt.Format(timestampLayout),
		UpdatedAt:    ev.UpdatedAt.Format(timestampLayout),
	}

	if policy.CanSeeAttendees(caller, ev) {
		attendees := make([]models.User, len(ev.Users))
		copy(attendees, ev.Users)
		sort.SliceStable(attendees, func(i, j int) bool {
			return validation.SortUsers(&attendees[i], &attendees[j]) < 0
		})

		projected := make([]AttendeeResponse, 0, len(attendees))
		for i := range attendees {
			projected = append(projected, AttendeeResponse{
				ID:       attendees[i].ID,
				Surnames: attendees[i].Surnames,
				Name:     attendees[i].Name,
				Username: attendees[i].Username,
			})
		}
		resp.Users = &projected
	}

	if policy.CanSeeAuthor(caller) && ev.Author != nil {
		resp.Author = &AuthorResponse{
			ID:       ev.Author.ID,
			Username: ev.Author.Username,
			Role:     ev.Author.Role,
		}
	}

	return resp
}

// buildResponses ordena la colección con el comparador solicitado y
// proyecta cada evento.
func buildResponses(caller *models.User, events []models.Event, field, order string) []Response {
	sort.SliceStable(events, func(i, j int) bool {
		return validation.SortEvents(&events[i], &events[j], field, order) < 0
	})
	responses := make([]Response, 0, len(events))
	for i := range events {
		responses = append(responses, buildResponse(caller, &events[i]))
	}
	return responses
}
