package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// User is an account as stored in the users collection. PasswordHash never
// leaves the server.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"`
}

// IsStaff reports whether the user may enter the team chat and the admin
// panel.
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperadmin
}

func (u *User) IsSuperadmin() bool {
	return u.Role == RoleSuperadmin
}

// HexID is the string form used in room keys, message documents and the API.
func (u *User) HexID() string {
	return u.ID.Hex()
}

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}
