package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"    json:"id"`
	Name          string             `bson:"name"             json:"name"`
	Email         string             `bson:"email"            json:"email"`
	Mobile        string             `bson:"mobile"           json:"mobile"`
	PasswordHash  string             `bson:"password_hash"    json:"-"`
	VerifyEmail   bool               `bson:"verify_email"     json:"verify_email"`
	LastLoginDate *time.Time         `bson:"last_login_date,omitempty" json:"last_login_date,omitempty"`
	RefreshToken  string             `bson:"refresh_token,omitempty"   json:"-"`
	CreatedAt     time.Time          `bson:"created_at"       json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"       json:"updated_at"`
}

// Public is the login/register projection: no hash, no stored refresh token.
type Public struct {
	ID     primitive.ObjectID `json:"id"`
	Name   string             `json:"name"`
	Email  string             `json:"email"`
	Mobile string             `json:"mobile"`
}

func (u *User) Public() Public {
	return Public{ID: u.ID, Name: u.Name, Email: u.Email, Mobile: u.Mobile}
}
