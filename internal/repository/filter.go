package repository

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// PostFilter selects which posts a list or count query matches.
// Empty fields do not filter.
type PostFilter struct {
	Status   string
	Keywords string
}

// Query shapes chosen by which filters are present.
const (
	ShapeStatusAndKeywords = "status_keywords"
	ShapeKeywords          = "keywords"
	ShapeStatus            = "status"
	ShapeAll               = "all"
)

// Shape returns the query shape this filter selects.
func (f PostFilter) Shape() string {
	switch {
	case f.Status != "" && f.Keywords != "":
		return ShapeStatusAndKeywords
	case f.Keywords != "":
		return ShapeKeywords
	case f.Status != "":
		return ShapeStatus
	default:
		return ShapeAll
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// apply adds the filter predicates to b. Keywords match title as a
// case-insensitive substring; LIKE wildcards in the keywords match literally.
func (f PostFilter) apply(b sq.SelectBuilder, dialect string) sq.SelectBuilder {
	if f.Status != "" {
		b = b.Where(sq.Eq{"status": f.Status})
	}
	if f.Keywords != "" {
		pattern := "%" + likeEscaper.Replace(f.Keywords) + "%"
		if dialect == "postgres" {
			b = b.Where(sq.Expr(`title ILIKE ? ESCAPE '\'`, pattern))
		} else {
			b = b.Where(sq.Expr(`LOWER(title) LIKE LOWER(?) ESCAPE '\'`, pattern))
		}
	}
	return b
}

// listQuery builds one page of posts ordered by id so pages stay stable.
func listQuery(f PostFilter, dialect string, limit, offset int) (string, []interface{}, error) {
	b := sq.Select("*").From("posts")
	b = f.apply(b, dialect).
		OrderBy("post_id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	return b.ToSql()
}

// countQuery counts every post matching the same predicate as listQuery.
func countQuery(f PostFilter, dialect string) (string, []interface{}, error) {
	b := sq.Select("COUNT(*)").From("posts")
	return f.apply(b, dialect).ToSql()
}
