package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/deyby01/nexus-pm-v2/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	FullName  string    `json:"full_name"`
	Timezone  string    `json:"timezone,omitempty"`
	Language  string    `json:"language,omitempty"`
	JobTitle  string    `json:"job_title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		FullName:  user.FullName(),
		Timezone:  user.Timezone,
		Language:  user.Language,
		JobTitle:  user.JobTitle,
		CreatedAt: user.CreatedAt,
	}
}
