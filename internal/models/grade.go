package models

// Term names the academic term a grade belongs to.
type Term string

const (
	TermFirst  Term = "FIRST"
	TermSecond Term = "SECOND"
	TermThird  Term = "THIRD"
)

// Valid reports whether the term is one of the enumerated values.
func (t Term) Valid() bool {
	switch t {
	case TermFirst, TermSecond, TermThird:
		return true
	}
	return false
}

// Grade records one weighted score for a student-subject pairing.
type Grade struct {
	Lifecycle
	StudentID  string  `db:"student_id" json:"student_id"`
	SubjectID  string  `db:"subject_id" json:"subject_id"`
	EducatorID *string `db:"educator_id" json:"educator_id"`
	Score      float64 `db:"score" json:"score"`
	Weight     int     `db:"weight" json:"weight"`
	Term       Term    `db:"term" json:"term"`
	Session    string  `db:"session" json:"session"`
}

func (*Grade) Kind() EntityKind { return KindGrade }

// TotalGrade is derived from the grades of one student-subject for a
// session and term; unique across the four.
type TotalGrade struct {
	Lifecycle
	StudentID string  `db:"student_id" json:"student_id"`
	SubjectID string  `db:"subject_id" json:"subject_id"`
	Total     float64 `db:"total" json:"total"`
	Term      Term    `db:"term" json:"term"`
	Session   string  `db:"session" json:"session"`
}

func (*TotalGrade) Kind() EntityKind { return KindTotalGrade }
