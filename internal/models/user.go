package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles carried in access tokens.
const (
	RoleAdmin   = "admin"
	RoleStation = "station"
)

// UnknownStation labels bets whose owner no longer resolves to a station.
const UnknownStation = "Unknown Station"

// User represents an account profile. Its ID is shared with the Identity
// holding the credentials.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email     string             `bson:"email" json:"email"`
	IsAdmin   bool               `bson:"isAdmin" json:"isAdmin"`
	Station   *string            `bson:"station" json:"station"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Role returns the routing role for the account.
func (u *User) Role() string {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleStation
}

// StationName returns the station label, or "" for admins.
func (u *User) StationName() string {
	if u.Station == nil {
		return ""
	}
	return *u.Station
}

// HomePath is where the client lands after sign-in.
func (u *User) HomePath() string {
	if u.IsAdmin {
		return "/admin"
	}
	return "/station"
}

// Identity is the credential record for a User. It lives in its own
// collection and is never returned to clients.
type Identity struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Email        string             `bson:"email" json:"-"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"-"`
}
