package models

// User is a dashboard operator allowed to call the /api/v1 endpoints.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
