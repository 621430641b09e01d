package models

// SubjectEducator links an educator to a subject for a session and term.
// Unique across (subject, educator, level, session, term).
type SubjectEducator struct {
	Lifecycle
	SubjectID  string  `db:"subject_id" json:"subject_id"`
	EducatorID *string `db:"educator_id" json:"educator_id"`
	LevelID    string  `db:"level_id" json:"level_id"`
	Session    string  `db:"session" json:"session"`
	Term       Term    `db:"term" json:"term"`
}

func (*SubjectEducator) Kind() EntityKind { return KindSubjectEducator }

// AccessLevelChange is the audit trail of staff access level mutations. It
// references the subject staff and the actor staff; both FKs nullify when
// the staff row is hard-deleted.
type AccessLevelChange struct {
	Lifecycle
	StaffID       *string `db:"staff_id" json:"staff_id"`
	ChangedByID   *string `db:"changed_by_id" json:"changed_by_id"`
	PreviousLevel int     `db:"previous_level" json:"previous_level"`
	NewLevel      int     `db:"new_level" json:"new_level"`
	Reason        string  `db:"reason" json:"reason"`
}

func (*AccessLevelChange) Kind() EntityKind { return KindAccessLevelChange }
