package models

// Subject is taught at one level and graded per student.
type Subject struct {
	Lifecycle
	Name    string `db:"name" json:"name"`
	Code    string `db:"code" json:"code"`
	LevelID string `db:"level_id" json:"level_id"`
}

func (*Subject) Kind() EntityKind { return KindSubject }
