package dto

import "time"

type UserRegistrationRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UserAuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Role        string    `json:"role"`
	Star        float64   `json:"star"`
	Priority    float64   `json:"priority"`
	IsActive    bool      `json:"is_active"`
	DateCreated time.Time `json:"date_created"`
}
