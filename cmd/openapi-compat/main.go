// Command main checks a Swagger document for changes that break existing clients.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"postboard/docs"
	"postboard/internal/apicompat"
)

func main() {
	basePath := flag.String("base", "", "base swagger.yaml or swagger.json path")
	revisionPath := flag.String("revision", "", "revision document path (default: the compiled-in API doc)")
	flag.Parse()

	if strings.TrimSpace(*basePath) == "" {
		fmt.Fprintln(os.Stderr, "usage: openapi-compat -base <path> [-revision <path>]")
		os.Exit(2)
	}

	base, err := loadFile(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base spec: %v\n", err)
		os.Exit(1)
	}

	var revision apicompat.Spec
	if strings.TrimSpace(*revisionPath) == "" {
		revision, err = apicompat.Parse([]byte(docs.SwaggerInfo.ReadDoc()))
	} else {
		revision, err = loadFile(*revisionPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision spec: %v\n", err)
		os.Exit(1)
	}

	if issues := apicompat.Compare(base, revision); len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}

	fmt.Println("openapi compatibility check passed")
}

func loadFile(path string) (apicompat.Spec, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return apicompat.Spec{}, err
	}
	return apicompat.Parse(raw)
}
