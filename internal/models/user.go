package models

import "time"

type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// AssignableRoles: roles que un admin puede asignar al crear o actualizar
// un usuario. "superadmin" nunca es asignable.
var AssignableRoles = []Role{RoleUser, RoleAdmin}

func (r Role) IsAssignable() bool {
	for _, allowed := range AssignableRoles {
		if r == allowed {
			return true
		}
	}
	return false
}

// IsAdmin: admin y superadmin comparten los permisos de administración.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Surnames     string `gorm:"size:120;not null"`
	Name         string `gorm:"size:120;not null"`
	Username     string `gorm:"size:60;uniqueIndex;not null"`
	Avatar       string `gorm:"size:512"`
	PasswordHash string `gorm:"size:255;not null"`
	Email        string `gorm:"size:120;uniqueIndex;not null"`
	Role         Role   `gorm:"size:20;not null;default:user"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
