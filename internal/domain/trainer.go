package domain

import "time"

// Trainer es el perfil de entrenador asociado 1:1 a un usuario.
type Trainer struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Age       string    `json:"age"`
	Region    string    `json:"region"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
