package domain

import "time"

type User struct {
	ID                        string     `json:"id"`
	Email                     string     `json:"email"`
	PasswordHash              string     `json:"-"`
	Image                     string     `json:"image,omitempty"`
	AuthProvider              string     `json:"auth_provider,omitempty"`
	AuthSubject               string     `json:"-"`
	EmailVerified             *time.Time `json:"email_verified,omitempty"`
	VerificationToken         string     `json:"-"`
	VerificationTokenExpires  *time.Time `json:"-"`
	PasswordResetToken        string     `json:"-"`
	PasswordResetTokenExpires *time.Time `json:"-"`
	TrainerID                 string     `json:"trainer_id,omitempty"`
	CreatedAt                 time.Time  `json:"created_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`
}

// HasPassword indica si la cuenta admite login con credenciales.
func (u User) HasPassword() bool {
	return u.PasswordHash != ""
}
