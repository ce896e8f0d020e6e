package repositories

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Condition matches a single column, either by equality or, when Contains
// is set, by substring ignoring ASCII case on every driver.
type Condition struct {
	Column   string
	Value    any
	Contains bool
}

// Filter is a group of conditions of which at least one must hold.
type Filter []Condition

// Query selects rows matching every filter. Offset and Limit are ignored
// when zero; a negative Offset selects no rows.
type Query struct {
	Filters []Filter
	Offset  int
	Limit   int
}

// Eq matches rows whose column equals value.
func Eq(column string, value any) Filter {
	return Filter{{Column: column, Value: value}}
}

// Contains matches rows whose column contains term.
func Contains(column, term string) Filter {
	return Filter{{Column: column, Value: term, Contains: true}}
}

// AnyContains matches rows where at least one of columns contains term.
func AnyContains(term string, columns ...string) Filter {
	f := make(Filter, 0, len(columns))
	for _, c := range columns {
		f = append(f, Condition{Column: c, Value: term, Contains: true})
	}
	return f
}

// Where builds a query from filters combined with AND.
func Where(filters ...Filter) Query {
	return Query{Filters: filters}
}

// And returns a copy of q with more filters appended.
func (q Query) And(filters ...Filter) Query {
	out := q
	out.Filters = append(append([]Filter(nil), q.Filters...), filters...)
	return out
}

// Page returns a copy of q restricted to a window of rows.
func (q Query) Page(offset, limit int) Query {
	q.Offset = offset
	q.Limit = limit
	return q
}

// where applies the filters of q to db.
func (q Query) where(db *gorm.DB) *gorm.DB {
	for _, f := range q.Filters {
		if expr := f.expression(); expr != nil {
			db = db.Where(expr)
		}
	}
	return db
}

// window applies the offset and limit of q to db.
func (q Query) window(db *gorm.DB) *gorm.DB {
	if q.Offset > 0 {
		db = db.Offset(q.Offset)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	return db
}

func (f Filter) expression() clause.Expression {
	switch len(f) {
	case 0:
		return nil
	case 1:
		return f[0].expression()
	}
	exprs := make([]clause.Expression, 0, len(f))
	for _, c := range f {
		exprs = append(exprs, c.expression())
	}
	return clause.Or(exprs...)
}

func (c Condition) expression() clause.Expression {
	col := clause.Column{Name: c.Column}
	if c.Contains {
		pattern := "%" + escapeLike(fmt.Sprint(c.Value)) + "%"
		return clause.Expr{SQL: `LOWER(?) LIKE LOWER(?) ESCAPE '\'`, Vars: []any{col, pattern}}
	}
	return clause.Eq{Column: col, Value: c.Value}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in a search term match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
