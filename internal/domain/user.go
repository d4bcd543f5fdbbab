package domain

import "time"

// DefaultProfilePicture is assigned when a new account does not supply one.
const DefaultProfilePicture = "https://images.pexels.com/photos/2071882/pexels-photo-2071882.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=1"

// User represents a registered account. PasswordHash never leaves the server.
type User struct {
	ID             int64
	Email          string
	Username       string
	PasswordHash   string
	ProfilePicture string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
