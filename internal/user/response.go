package user

import (
	"sort"

	"meetings-backend/internal/models"
	"meetings-backend/internal/validation"

	"gorm.io/gorm"
)

const timestampLayout = "02/01/2006 15:04:05"

type Response struct {
	ID       uint        `json:"id"`
	Surnames string      `json:"surnames"`
	Name     string      `json:"name"`
	Username string      `json:"username"`
	Avatar   string      `json:"avatar"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	// Eventos a los que asiste el usuario, ordenados por el criterio por
	// defecto. La contraseña nunca se serializa.
	Events    []uint `json:"events"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func buildResponse(db *gorm.DB, u *models.User) (*Response, error) {
	var events []models.Event
	err := db.Joins("JOIN event_users ON event_users.event_id = events.id").
		Where("event_users.user_id = ?", u.ID).
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	sort.SliceStable(events, func(i, j int) bool {
		return validation.SortEvents(&events[i], &events[j], validation.SortFieldTitle, validation.OrderAsc) < 0
	})
	eventIDs := make([]uint, 0, len(events))
	for i := range events {
		eventIDs = append(eventIDs, events[i].ID)
	}

	return &Response{
		ID:        u.ID,
		Surnames:  u.Surnames,
		Name:      u.Name,
		Username:  u.Username,
		Avatar:    u.Avatar,
		Email:     u.Email,
		Role:      u.Role,
		Events:    eventIDs,
		CreatedAt: u.CreatedAt.Format(timestampLayout),
		UpdatedAt: u.UpdatedAt.Format(timestampLayout),
	}, nil
}
