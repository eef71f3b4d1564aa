package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin = "admin"
	RoleUser  = "usuario"
)

// User representa un usuario del laboratorio.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt
	Role         string // admin, usuario
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin indica si el usuario tiene rol administrador.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Actor identifica a quien ejecuta una operación (extraído del token).
type Actor struct {
	UserID string
	Role   string
}

// CanModify indica si el actor puede editar o eliminar un registro creado por ownerID.
func (a Actor) CanModify(ownerID string) bool {
	return a.Role == RoleAdmin || (a.UserID != "" && a.UserID == ownerID)
}
