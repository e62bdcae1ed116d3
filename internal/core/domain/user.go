package domain

const (
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// User is the profile record returned by the backend for the authenticated
// actor. It is only ever populated from a successful profile fetch.
type User struct {
	ID       int64  `json:"id"       yaml:"id"       validate:"required"`
	Name     string `json:"name"     yaml:"name"`
	Username string `json:"username" yaml:"username" validate:"required"`
	Email    string `json:"email"    yaml:"email"`
	Role     string `json:"role"     yaml:"role"     validate:"required,oneof=manager employee"`
}

// IsManager reports whether the user holds the manager role.
func (u *User) IsManager() bool {
	return u != nil && u.Role == RoleManager
}

// Registration carries the fields accepted by POST /auth/register.
type Registration struct {
	Name     string `json:"name"     validate:"required"`
	Username string `json:"username" validate:"required,min=3,max=20"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"     validate:"required,oneof=manager employee"`
}

// ProfileUpdate carries the optional fields accepted by PUT /users/profile.
type ProfileUpdate struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"    validate:"omitempty,email"`
	Password string `json:"password,omitempty"`
}
