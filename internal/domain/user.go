package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// CartItem is a product reference with a quantity, embedded in the user
// document.
type CartItem struct {
	ProductID primitive.ObjectID `json:"product_id" bson:"product_id"`
	Quantity  int                `json:"quantity" bson:"quantity"`
}

// User represents a registered account. FailedLoginAttempts and LockUntil
// drive the login lockout policy.
type User struct {
	ID                  primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name                string             `json:"name" bson:"name"`
	LastName            string             `json:"lastname" bson:"lastname"`
	Username            string             `json:"username" bson:"username"`
	Email               string             `json:"email" bson:"email"`
	PasswordHash        string             `json:"-" bson:"password"`
	Role                string             `json:"role" bson:"role"`
	ProfilePicture      string             `json:"profile_picture,omitempty" bson:"profile_picture,omitempty"`
	Cart                []CartItem         `json:"cart" bson:"cart"`
	FailedLoginAttempts int                `json:"-" bson:"failed_login_attempts"`
	LockUntil           *time.Time         `json:"-" bson:"lock_until,omitempty"`
	CreatedAt           time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at" bson:"updated_at"`
}

// Locked reports whether the account is currently locked out.
func (u *User) Locked(now time.Time) bool {
	return u.LockUntil != nil && now.Before(*u.LockUntil)
}
