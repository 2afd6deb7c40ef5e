package domain

import (
	"fmt"
	"time"

	"github.com/diagnosis/luxstay-hotel/internal/utils"
)

type AdminRole string

const (
	RoleAdmin AdminRole = "admin"
	RoleStaff AdminRole = "staff"
)

func ParseAdminRole(s string) (AdminRole, bool) {
	switch AdminRole(s) {
	case RoleAdmin, RoleStaff:
		return AdminRole(s), true
	default:
		return "", false
	}
}

type Admin struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         AdminRole `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type AdminCreateRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (r *AdminCreateRequest) Normalize() {
	r.Email = utils.NormalizeEmail(r.Email)
	r.Name = utils.NormalizeString(r.Name)
	r.Role = utils.NormalizeStatus(r.Role)
}

func (r *AdminCreateRequest) Validate() error {
	if !utils.IsValidEmail(r.Email) {
		return fmt.Errorf("email is invalid")
	}
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if _, ok := ParseAdminRole(r.Role); !ok {
		return fmt.Errorf("role must be admin or staff")
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

type AdminUpdateRequest struct {
	Name *string `json:"name"`
	Role *string `json:"role"`
}

type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *AdminLoginRequest) Normalize() {
	r.Email = utils.NormalizeEmail(r.Email)
}

func (r *AdminLoginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return fmt.Errorf("email and password are required")
	}
	return nil
}

type AdminLoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	Admin     Admin  `json:"admin"`
}
