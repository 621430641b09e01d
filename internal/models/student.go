package models

import "time"

// Student references at most one guardian, one level, one class and
// optionally one department.
type Student struct {
	Lifecycle
	Name             string    `db:"name" json:"name"`
	Email            string    `db:"email" json:"email"`
	StudentNumber    string    `db:"student_number" json:"student_number"`
	GuardianID       *string   `db:"guardian_id" json:"guardian_id"`
	LevelID          string    `db:"level_id" json:"level_id"`
	ClassID          string    `db:"class_id" json:"class_id"`
	DepartmentID     *string   `db:"department_id" json:"department_id"`
	DateOfBirth      time.Time `db:"date_of_birth" json:"date_of_birth"`
	SessionStartYear int       `db:"session_start_year" json:"session_start_year"`
	PasswordHash     string    `db:"password_hash" json:"-"`
}

func (*Student) Kind() EntityKind { return KindStudent }
