package dto

import "time"

// CreateStaffRoleRequest creates a staff role.
type CreateStaffRoleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// UpdateStaffRoleRequest replaces the mutable fields of a staff role.
type UpdateStaffRoleRequest = CreateStaffRoleRequest

// CreateStaffDepartmentRequest creates an organisational staff department.
type CreateStaffDepartmentRequest = CreateStaffRoleRequest

// UpdateStaffDepartmentRequest replaces its mutable fields.
type UpdateStaffDepartmentRequest = CreateStaffRoleRequest

// CreateStaffRequest registers a staff member of any kind.
type CreateStaffRequest struct {
	StaffKind    string    `json:"staff_kind" binding:"required"`
	Name         string    `json:"name" binding:"required"`
	Email        string    `json:"email" binding:"required"`
	Phone        string    `json:"phone" binding:"required"`
	RoleID       *string   `json:"role_id" binding:"omitempty,uuid"`
	DepartmentID *string   `json:"department_id" binding:"omitempty,uuid"`
	AccessLevel  int       `json:"access_level" binding:"required"`
	Password     string    `json:"password" binding:"required"`
	DateJoined   time.Time `json:"date_joined" binding:"required"`
}

// UpdateStaffRequest replaces the mutable fields of a staff member. Access
// level changes go through their own audited endpoint.
type UpdateStaffRequest struct {
	StaffKind    string    `json:"staff_kind" binding:"required"`
	Name         string    `json:"name" binding:"required"`
	Email        string    `json:"email" binding:"required"`
	Phone        string    `json:"phone" binding:"required"`
	RoleID       *string   `json:"role_id" binding:"omitempty,uuid"`
	DepartmentID *string   `json:"department_id" binding:"omitempty,uuid"`
	DateJoined   time.Time `json:"date_joined" binding:"required"`
}

// ChangeAccessLevelRequest mutates a staff member's access level, leaving an
// audit row behind.
type ChangeAccessLevelRequest struct {
	NewLevel int    `json:"new_level" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
}
