// Package testutil holds test helpers that pin the layering of the chefmenu
// packages: the dish model and repository stay free of transport and login
// concerns.
package testutil

import (
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// AssertNoDirectImports parses the non-test .go files in dir and fails when
// any import path matches forbidden. Build tags are ignored.
func AssertNoDirectImports(t testing.TB, dir string, forbidden func(importPath string) bool, reason string) {
	t.Helper()
	viols, err := directImportViolations(dir, forbidden)
	if err != nil {
		t.Fatalf("scan imports in %s: %v", dir, err)
	}
	failIfViolations(t, "forbidden direct imports", reason, viols)
}

// AssertNoTransitiveDependency runs `go list -deps pattern` and fails when any
// listed package matches forbidden.
func AssertNoTransitiveDependency(t testing.TB, pattern string, forbidden func(path string) bool, reason string) {
	t.Helper()
	out, err := goListDeps(pattern)
	if err != nil {
		t.Fatalf("go list -deps %s: %v\n%s", pattern, err, out)
	}
	var viols []string
	for _, line := range strings.Split(string(out), "\n") {
		if p := strings.TrimSpace(line); p != "" && forbidden(p) {
			viols = append(viols, p)
		}
	}
	failIfViolations(t, "forbidden transitive dependency", reason, viols)
}

// InternalImportForbidden matches any package under an internal/ tree.
func InternalImportForbidden(path string) bool {
	return strings.Contains(path, "/internal/")
}

// TransportImportForbidden matches the HTTP surface: the api package, the
// command binaries and the gin framework.
func TransportImportForbidden(path string) bool {
	return strings.HasSuffix(path, "/internal/api") ||
		strings.Contains(path, "/cmd/") ||
		strings.HasPrefix(path, "github.com/gin-gonic/") ||
		strings.HasPrefix(path, "github.com/gin-contrib/")
}

// SessionImportForbidden matches the login gate package.
func SessionImportForbidden(path string) bool {
	return strings.HasSuffix(path, "/internal/session")
}

// AnyOf combines predicates.
func AnyOf(preds ...func(string) bool) func(string) bool {
	return func(path string) bool {
		for _, p := range preds {
			if p(path) {
				return true
			}
		}
		return false
	}
}

var goListDeps = func(pattern string) ([]byte, error) {
	return exec.Command("go", "list", "-deps", pattern).CombinedOutput()
}

func directImportViolations(dir string, forbidden func(importPath string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	var viols []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ImportsOnly)
		if err != nil {
			return nil, err
		}
		for _, imp := range file.Imports {
			ip := strings.Trim(imp.Path.Value, `"`)
			if forbidden(ip) {
				viols = append(viols, ip+" (in "+name+")")
			}
		}
	}
	sort.Strings(viols)
	return viols, nil
}

type fatalLogger interface {
	Fatalf(format string, args ...any)
}

func failIfViolations(t fatalLogger, what, reason string, viols []string) {
	if len(viols) > 0 {
		t.Fatalf("%s detected (%s):\n%s", what, reason, strings.Join(viols, "\n"))
	}
}
