package apicompat

import (
	"testing"

	"postboard/docs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseDoc = `
swagger: "2.0"
paths:
  /posts:
    parameters:
      - name: shared
        in: query
    get:
      parameters:
        - name: status
          in: query
        - name: page
          in: query
      responses:
        "200": {description: OK}
        "500": {description: error}
    post:
      responses:
        "200": {description: OK}
  /posts/{id}:
    delete:
      parameters:
        - name: id
          in: path
          required: true
      responses:
        "200": {description: OK}
        "404": {description: missing}
`

func TestParse(t *testing.T) {
	spec, err := Parse([]byte(baseDoc))
	require.NoError(t, err)

	require.Contains(t, spec.Paths, "/posts")
	assert.Len(t, spec.Paths["/posts"], 2, "path-level parameters are not an operation")
	get := spec.Paths["/posts"]["get"]
	assert.Contains(t, get.Parameters, "query:status")
	assert.Contains(t, get.Responses, "500")
	assert.True(t, spec.Paths["/posts/{id}"]["delete"].Parameters["path:id"].Required)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte(`swagger: "2.0"`))
	assert.Error(t, err)

	_, err = Parse([]byte(`paths: [`))
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	base, err := Parse([]byte(baseDoc))
	require.NoError(t, err)

	tests := []struct {
		name     string
		revision string
		expected []string
	}{
		{
			name:     "identical",
			revision: baseDoc,
			expected: nil,
		},
		{
			name: "breaking changes",
			revision: `
paths:
  /posts:
    get:
      parameters:
        - name: page
          in: query
        - name: tenant
          in: header
          required: true
      responses:
        "200": {description: OK}
`,
			expected: []string{
				"new required parameter: GET /posts tenant (header)",
				"removed operation: POST /posts",
				"removed parameter: GET /posts status (query)",
				"removed path: /posts/{id}",
				"removed response code: GET /posts -> 500",
			},
		},
		{
			name: "additions are compatible",
			revision: baseDoc + `
  /posts/{id}/history:
    get:
      responses:
        "200": {description: OK}
`,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rev, err := Parse([]byte(tt.revision))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, Compare(base, rev))
		})
	}
}

func TestCompare_GeneratedDocAgainstItself(t *testing.T) {
	spec, err := Parse([]byte(docs.SwaggerInfo.ReadDoc()))
	require.NoError(t, err)

	require.Contains(t, spec.Paths, "/posts/{id}")
	for _, method := range []string{"get", "put", "patch", "delete"} {
		assert.Contains(t, spec.Paths["/posts/{id}"], method)
	}
	assert.Empty(t, Compare(spec, spec))
}
