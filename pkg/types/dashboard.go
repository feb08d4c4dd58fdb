package types

// GroupCount — одна строка результата GROUP BY.
// Key == nil, когда группировочная колонка NULL.
type GroupCount struct {
	Key   *string `db:"key"`
	Count int64   `db:"count"`
}
