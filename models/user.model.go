package models

import "time"

// Roles
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Address represents a user's saved delivery address
type Address struct {
	Address    string `bson:"address" json:"address"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state" json:"state"`
	PostalCode string `bson:"postal_code" json:"postal_code"`
	Country    string `bson:"country" json:"country"`
}

// User represents a user in the system
type User struct {
	ID                string    `bson:"_id" json:"id"`
	Email             string    `bson:"email" json:"email"`
	Password          string    `bson:"password,omitempty" json:"-"`
	Role              string    `bson:"role" json:"role"` // "customer" or "admin"
	FirstName         string    `bson:"first_name" json:"first_name"`
	LastName          string    `bson:"last_name" json:"last_name"`
	Phone             string    `bson:"phone" json:"phone"`
	Address           Address   `bson:"address_info" json:"address_info"`
	ProfileImage      string    `bson:"profile_image" json:"profile_image"`
	IsVerified        bool      `bson:"is_verified" json:"is_verified"`
	VerificationToken string    `bson:"verification_token" json:"-"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the user carries the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// FullName joins first and last name
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// ValidRole reports whether role is one of the known roles
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleCustomer
}
