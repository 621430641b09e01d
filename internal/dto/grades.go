package dto

// CreateGradeRequest records a weighted score. The total for the grade's
// (student, subject, session, term) group is recomputed on every write.
type CreateGradeRequest struct {
	StudentID  string  `json:"student_id" binding:"required,uuid"`
	SubjectID  string  `json:"subject_id" binding:"required,uuid"`
	EducatorID *string `json:"educator_id" binding:"omitempty,uuid"`
	Score      float64 `json:"score"`
	Weight     int     `json:"weight" binding:"required"`
	Term       string  `json:"term" binding:"required"`
	Session    string  `json:"session" binding:"required,session"`
}

// UpdateGradeRequest rescores an existing grade in place; the pairing and
// period stay fixed.
type UpdateGradeRequest struct {
	EducatorID *string `json:"educator_id" binding:"omitempty,uuid"`
	Score      float64 `json:"score"`
	Weight     int     `json:"weight" binding:"required"`
}

// CreateSubjectEducatorRequest assigns an educator to a subject for a period.
type CreateSubjectEducatorRequest struct {
	SubjectID  string `json:"subject_id" binding:"required,uuid"`
	EducatorID string `json:"educator_id" binding:"required,uuid"`
	LevelID    string `json:"level_id" binding:"required,uuid"`
	Session    string `json:"session" binding:"required,session"`
	Term       string `json:"term" binding:"required"`
}

// UpdateSubjectEducatorRequest replaces the assignment fields.
type UpdateSubjectEducatorRequest = CreateSubjectEducatorRequest
