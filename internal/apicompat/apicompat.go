// Package apicompat finds backward-incompatible changes between two Swagger
// documents of the posts API.
package apicompat

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var supportedMethods = map[string]struct{}{
	"get":     {},
	"put":     {},
	"post":    {},
	"delete":  {},
	"patch":   {},
	"head":    {},
	"options": {},
}

// Parameter identifies one operation parameter.
type Parameter struct {
	Name     string `yaml:"name"`
	In       string `yaml:"in"`
	Required bool   `yaml:"required"`
}

func (p Parameter) key() string {
	return p.In + ":" + p.Name
}

// Operation is the part of an operation that clients depend on.
type Operation struct {
	Parameters map[string]Parameter
	Responses  map[string]struct{}
}

// Spec maps path -> lower-case method -> operation.
type Spec struct {
	Paths map[string]map[string]Operation
}

type rawOperation struct {
	Parameters []Parameter           `yaml:"parameters"`
	Responses  map[string]yaml.Node `yaml:"responses"`
}

// Parse reads a Swagger or OpenAPI document in YAML or JSON.
func Parse(raw []byte) (Spec, error) {
	var doc struct {
		Paths map[string]map[string]yaml.Node `yaml:"paths"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Spec{}, fmt.Errorf("decode document: %w", err)
	}
	if doc.Paths == nil {
		return Spec{}, errors.New("missing top-level paths field")
	}

	spec := Spec{Paths: make(map[string]map[string]Operation, len(doc.Paths))}
	for path, item := range doc.Paths {
		ops := make(map[string]Operation)
		for method, node := range item {
			method = strings.ToLower(strings.TrimSpace(method))
			if _, ok := supportedMethods[method]; !ok {
				continue
			}
			var op rawOperation
			if err := node.Decode(&op); err != nil {
				return Spec{}, fmt.Errorf("decode %s %s: %w", strings.ToUpper(method), path, err)
			}

			parsed := Operation{
				Parameters: make(map[string]Parameter, len(op.Parameters)),
				Responses:  make(map[string]struct{}, len(op.Responses)),
			}
			for _, p := range op.Parameters {
				parsed.Parameters[p.key()] = p
			}
			for code := range op.Responses {
				if code = strings.ToLower(strings.TrimSpace(code)); code != "" {
					parsed.Responses[code] = struct{}{}
				}
			}
			ops[method] = parsed
		}
		if len(ops) > 0 {
			spec.Paths[path] = ops
		}
	}
	return spec, nil
}

// Compare lists every change in revision that can break a client written
// against base, sorted for stable output.
func Compare(base, revision Spec) []string {
	var issues []string

	for path, baseOps := range base.Paths {
		revOps, ok := revision.Paths[path]
		if !ok {
			issues = append(issues, "removed path: "+path)
			continue
		}

		for method, baseOp := range baseOps {
			label := strings.ToUpper(method) + " " + path
			revOp, ok := revOps[method]
			if !ok {
				issues = append(issues, "removed operation: "+label)
				continue
			}

			for code := range baseOp.Responses {
				if _, ok := revOp.Responses[code]; !ok {
					issues = append(issues, fmt.Sprintf("removed response code: %s -> %s", label, strings.ToUpper(code)))
				}
			}

			for key, p := range baseOp.Parameters {
				if _, ok := revOp.Parameters[key]; !ok {
					issues = append(issues, fmt.Sprintf("removed parameter: %s %s (%s)", label, p.Name, p.In))
				}
			}
			for key, p := range revOp.Parameters {
				if !p.Required {
					continue
				}
				if old, ok := baseOp.Parameters[key]; !ok || !old.Required {
					issues = append(issues, fmt.Sprintf("new required parameter: %s %s (%s)", label, p.Name, p.In))
				}
			}
		}
	}

	sort.Strings(issues)
	return issues
}
