package models

import "time"

// StaffRole is referenced by zero or more staff members.
type StaffRole struct {
	Lifecycle
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
}

func (*StaffRole) Kind() EntityKind { return KindStaffRole }

// StaffDepartment groups staff members organisationally.
type StaffDepartment struct {
	Lifecycle
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
}

func (*StaffDepartment) Kind() EntityKind { return KindStaffDepartment }

// StaffKind discriminates the staff sum type.
type StaffKind string

const (
	StaffKindEducator StaffKind = "EDUCATOR"
	StaffKindAdmin    StaffKind = "ADMIN"
	StaffKindSupport  StaffKind = "SUPPORT"
	StaffKindSystem   StaffKind = "SYSTEM"
)

// Valid reports whether the staff kind is one of the enumerated variants.
func (k StaffKind) Valid() bool {
	switch k {
	case StaffKindEducator, StaffKindAdmin, StaffKindSupport, StaffKindSystem:
		return true
	}
	return false
}

// Access levels, lowest to highest.
const (
	AccessLevelReadOnly = 1
	AccessLevelStandard = 2
	AccessLevelElevated = 3
	AccessLevelSuper    = 4
)

// ValidAccessLevel reports whether the level falls in the defined range.
func ValidAccessLevel(level int) bool {
	return level >= AccessLevelReadOnly && level <= AccessLevelSuper
}

// Staff is the shared header of the polymorphic staff types. The StaffKind
// column discriminates the variant; educator-only relations (subject
// assignments) hang off rows with StaffKindEducator.
type Staff struct {
	Lifecycle
	StaffKind    StaffKind `db:"staff_kind" json:"staff_kind"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	RoleID       *string   `db:"role_id" json:"role_id"`
	DepartmentID *string   `db:"department_id" json:"department_id"`
	AccessLevel  int       `db:"access_level" json:"access_level"`
	PasswordHash string    `db:"password_hash" json:"-"`
	DateJoined   time.Time `db:"date_joined" json:"date_joined"`
}

func (*Staff) Kind() EntityKind { return KindStaff }
