package models

// Guardian is the responsible adult linked to students.
type Guardian struct {
	Lifecycle
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	Phone        string `db:"phone" json:"phone"`
	Address      string `db:"address" json:"address"`
	Gender       string `db:"gender" json:"gender"`
	PasswordHash string `db:"password_hash" json:"-"`
}

func (*Guardian) Kind() EntityKind { return KindGuardian }
