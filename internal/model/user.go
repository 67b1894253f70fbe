package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Roles a user can hold.  Admin may manage genres and every movie; Staff
// may only change the movies they authored.
const (
	RoleAdmin = "Admin"
	RoleStaff = "Staff"
)

// User represents an application user record as stored in the `users`
// table.  Password holds the bcrypt hash and is never serialized.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"size:100" json:"username"`
	Email       string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"size:255;not null" json:"-"`
	PhoneNumber string    `gorm:"size:30" json:"phoneNumber"`
	Address     string    `gorm:"size:255" json:"address"`
	Role        string    `gorm:"size:20;not null;default:'Admin'" json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BeforeSave keeps emails normalized so the unique index is case-insensitive
// in practice.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return nil
}

// SignupInput is the POST /signup body.  Pointer fields distinguish an
// omitted field from an empty one.
type SignupInput struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	PhoneNumber *string `json:"phoneNumber"`
	Address     *string `json:"address"`
	Role        *string `json:"role"`
}

// Validate reports every failing rule, e.g. an empty email yields both
// "email is required" and "check your format email".  An empty role is
// treated as omitted and defaults to Admin.
func (in SignupInput) Validate() error {
	return Check(
		required("email").with(str(in.Email), Rule{Tag: "email", Message: "check your format email"}),
		required("password").with(str(in.Password), Rule{Tag: "min=5", Message: "Password minimum 5 charackter"}),
		Field{Value: nonEmpty(in.Role), Rules: []Rule{{Tag: "oneof=Admin Staff", Message: "role must be Admin or Staff"}}},
	)
}

// ToUser maps the input onto a new User.  Password is still plain text;
// the repository hashes it before insert.
func (in SignupInput) ToUser() User {
	role := strings.TrimSpace(deref(in.Role))
	if role == "" {
		role = RoleAdmin
	}
	return User{
		Username:    strings.TrimSpace(deref(in.Username)),
		Email:       strings.ToLower(strings.TrimSpace(deref(in.Email))),
		Password:    deref(in.Password),
		PhoneNumber: strings.TrimSpace(deref(in.PhoneNumber)),
		Address:     strings.TrimSpace(deref(in.Address)),
		Role:        role,
	}
}

// LoginInput is the POST /login body.
type LoginInput struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (in LoginInput) Validate() error {
	return Check(
		required("email").with(str(in.Email)),
		required("password").with(str(in.Password)),
	)
}
