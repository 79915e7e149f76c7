package models

import "time"

type Event struct {
	ID           uint   `gorm:"primaryKey"`
	Title        string `gorm:"size:255;uniqueIndex;not null"`
	Poster       string `gorm:"size:512"`
	Date         string `gorm:"size:10;not null"` // dd/mm/yyyy
	Time         string `gorm:"size:5;not null"`  // hh:mm
	Headquarters string `gorm:"size:255;not null"`
	Description  string `gorm:"type:text;not null"`
	AuthorID     uint   `gorm:"not null;index"`
	Author       *User  `gorm:"foreignKey:AuthorID"`
	// Usuarios en calidad de asistentes al evento
	Users     []User `gorm:"many2many:event_users"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
