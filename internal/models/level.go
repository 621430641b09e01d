package models

// Level is an academic level containing ordered classes.
type Level struct {
	Lifecycle
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Order       int    `db:"rank_order" json:"order"`
}

// Kind returns the entity kind for registry lookups.
func (*Level) Kind() EntityKind { return KindLevel }
