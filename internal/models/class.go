package models

// Class belongs to exactly one level and orders uniquely within it.
type Class struct {
	Lifecycle
	Code    string `db:"code" json:"code"`
	LevelID string `db:"level_id" json:"level_id"`
	Order   int    `db:"rank_order" json:"order"`
}

func (*Class) Kind() EntityKind { return KindClass }
