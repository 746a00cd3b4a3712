package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostFilter_Shape(t *testing.T) {
	tests := []struct {
		name     string
		filter   PostFilter
		expected string
	}{
		{"both", PostFilter{Status: "published", Keywords: "go"}, ShapeStatusAndKeywords},
		{"keywords only", PostFilter{Keywords: "go"}, ShapeKeywords},
		{"status only", PostFilter{Status: "draft"}, ShapeStatus},
		{"none", PostFilter{}, ShapeAll},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.filter.Shape())
		})
	}
}

func TestListQuery_Shapes(t *testing.T) {
	tests := []struct {
		name         string
		filter       PostFilter
		dialect      string
		limit        int
		offset       int
		expectedSQL  string
		expectedArgs []interface{}
	}{
		{
			name:         "status and keywords on postgres",
			filter:       PostFilter{Status: "published", Keywords: "hello"},
			dialect:      "postgres",
			limit:        3,
			offset:       3,
			expectedSQL:  `SELECT * FROM posts WHERE status = ? AND title ILIKE ? ESCAPE '\' ORDER BY post_id ASC LIMIT 3 OFFSET 3`,
			expectedArgs: []interface{}{"published", "%hello%"},
		},
		{
			name:         "keywords only on postgres",
			filter:       PostFilter{Keywords: "hello"},
			dialect:      "postgres",
			limit:        3,
			offset:       0,
			expectedSQL:  `SELECT * FROM posts WHERE title ILIKE ? ESCAPE '\' ORDER BY post_id ASC LIMIT 3 OFFSET 0`,
			expectedArgs: []interface{}{"%hello%"},
		},
		{
			name:         "status only",
			filter:       PostFilter{Status: "draft"},
			dialect:      "postgres",
			limit:        3,
			offset:       6,
			expectedSQL:  `SELECT * FROM posts WHERE status = ? ORDER BY post_id ASC LIMIT 3 OFFSET 6`,
			expectedArgs: []interface{}{"draft"},
		},
		{
			name:        "unfiltered",
			filter:      PostFilter{},
			dialect:     "postgres",
			limit:       3,
			offset:      0,
			expectedSQL: `SELECT * FROM posts ORDER BY post_id ASC LIMIT 3 OFFSET 0`,
		},
		{
			name:         "keywords on sqlite use LOWER LIKE",
			filter:       PostFilter{Keywords: "Hello"},
			dialect:      "sqlite",
			limit:        3,
			offset:       0,
			expectedSQL:  `SELECT * FROM posts WHERE LOWER(title) LIKE LOWER(?) ESCAPE '\' ORDER BY post_id ASC LIMIT 3 OFFSET 0`,
			expectedArgs: []interface{}{"%Hello%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := listQuery(tt.filter, tt.dialect, tt.limit, tt.offset)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedSQL, sql)
			if tt.expectedArgs == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.expectedArgs, args)
			}
		})
	}
}

func TestCountQuery_UsesSamePredicate(t *testing.T) {
	sql, args, err := countQuery(PostFilter{Status: "published", Keywords: "hello"}, "postgres")
	require.NoError(t, err)
	assert.Equal(t, `SELECT COUNT(*) FROM posts WHERE status = ? AND title ILIKE ? ESCAPE '\'`, sql)
	assert.Equal(t, []interface{}{"published", "%hello%"}, args)

	sql, args, err = countQuery(PostFilter{}, "postgres")
	require.NoError(t, err)
	assert.Equal(t, `SELECT COUNT(*) FROM posts`, sql)
	assert.Empty(t, args)
}

func TestListQuery_EscapesLikeWildcards(t *testing.T) {
	_, args, err := listQuery(PostFilter{Keywords: `50%_off\`}, "postgres", 3, 0)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{`%50\%\_off\\%`}, args)
}
