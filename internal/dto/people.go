package dto

import "time"

// CreateGuardianRequest registers a guardian account.
type CreateGuardianRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Address  string `json:"address" binding:"required"`
	Gender   string `json:"gender" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateGuardianRequest replaces the mutable fields of a guardian. The
// password moves through the auth surface, never through entity update.
type UpdateGuardianRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address" binding:"required"`
	Gender  string `json:"gender" binding:"required"`
}

// CreateStudentRequest enrols a student.
type CreateStudentRequest struct {
	Name             string    `json:"name" binding:"required"`
	Email            string    `json:"email" binding:"required"`
	StudentNumber    string    `json:"student_number" binding:"required"`
	GuardianID       *string   `json:"guardian_id" binding:"omitempty,uuid"`
	LevelID          string    `json:"level_id" binding:"required,uuid"`
	ClassID          string    `json:"class_id" binding:"required,uuid"`
	DepartmentID     *string   `json:"department_id" binding:"omitempty,uuid"`
	DateOfBirth      time.Time `json:"date_of_birth" binding:"required"`
	SessionStartYear int       `json:"session_start_year" binding:"required"`
	Password         string    `json:"password" binding:"required"`
}

// UpdateStudentRequest replaces the mutable fields of a student.
type UpdateStudentRequest struct {
	Name             string    `json:"name" binding:"required"`
	Email            string    `json:"email" binding:"required"`
	StudentNumber    string    `json:"student_number" binding:"required"`
	GuardianID       *string   `json:"guardian_id" binding:"omitempty,uuid"`
	LevelID          string    `json:"level_id" binding:"required,uuid"`
	ClassID          string    `json:"class_id" binding:"required,uuid"`
	DepartmentID     *string   `json:"department_id" binding:"omitempty,uuid"`
	DateOfBirth      time.Time `json:"date_of_birth" binding:"required"`
	SessionStartYear int       `json:"session_start_year" binding:"required"`
}
