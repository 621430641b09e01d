// Package dto declares the request payloads bound by the HTTP layer. Domain
// validation and normalization happen in the services; binding tags only
// reject structurally broken payloads early.
package dto

// CreateLevelRequest creates an academic level.
type CreateLevelRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Order       int    `json:"order" binding:"required"`
}

// UpdateLevelRequest replaces the mutable fields of a level.
type UpdateLevelRequest = CreateLevelRequest

// CreateClassRequest creates a class within a level.
type CreateClassRequest struct {
	Code    string `json:"code" binding:"required"`
	LevelID string `json:"level_id" binding:"required,uuid"`
	Order   int    `json:"order" binding:"required"`
}

// UpdateClassRequest replaces the mutable fields of a class.
type UpdateClassRequest = CreateClassRequest

// CreateDepartmentRequest creates a class department.
type CreateDepartmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Code        string `json:"code" binding:"required"`
}

// UpdateDepartmentRequest replaces the mutable fields of a department.
type UpdateDepartmentRequest = CreateDepartmentRequest

// CreateSubjectRequest creates a subject taught at a level.
type CreateSubjectRequest struct {
	Name    string `json:"name" binding:"required"`
	Code    string `json:"code" binding:"required"`
	LevelID string `json:"level_id" binding:"required,uuid"`
}

// UpdateSubjectRequest replaces the mutable fields of a subject.
type UpdateSubjectRequest = CreateSubjectRequest
