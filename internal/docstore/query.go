// File: internal/docstore/query.go
package docstore

// Direction is the sort order of a query.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// Filter matches documents whose Field equals Value.
type Filter struct {
	Field string
	Value interface{}
}

// Query selects documents from one collection.
// Documents missing the OrderBy field are excluded from ordered results.
type Query struct {
	Filters   []Filter
	OrderBy   string
	Direction Direction
	Offset    int
	Limit     int
}

// Where returns a copy of q with an extra equality filter.
func (q Query) Where(field string, value interface{}) Query {
	filters := make([]Filter, 0, len(q.Filters)+1)
	filters = append(filters, q.Filters...)
	q.Filters = append(filters, Filter{Field: field, Value: value})
	return q
}

// Order returns a copy of q sorted by field.
func (q Query) Order(field string, dir Direction) Query {
	q.OrderBy = field
	q.Direction = dir
	return q
}

// Page returns a copy of q restricted to one page.
func (q Query) Page(offset, limit int) Query {
	q.Offset = offset
	q.Limit = limit
	return q
}
