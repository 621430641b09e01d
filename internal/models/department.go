package models

// Department groups students into a class department (arts, sciences, ...).
type Department struct {
	Lifecycle
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Code        string `db:"code" json:"code"`
}

func (*Department) Kind() EntityKind { return KindDepartment }
