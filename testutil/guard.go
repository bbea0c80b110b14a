// Package testutil provides reusable testing helpers for enforcing architectural
// and API boundary invariants across the repository.
package testutil

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// AssertNoTransitiveDependency loads the packages matched by pattern (e.g. ./... or .)
// and fails the test if any transitive dependency path satisfies the forbidden predicate.
// The reason string is appended to the failure for clarity.
func AssertNoTransitiveDependency(t testing.TB, pattern string, forbidden func(path string) bool, reason string) {
	t.Helper()
	viols, err := transitiveDependencyViolations(pattern, forbidden)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	failIfTransitiveViolations(t, reason, viols)
}

// AssertImportBoundary fails when a package matched by pattern imports a package
// under guarded unless the importer itself lives under one of the allowed prefixes.
func AssertImportBoundary(t testing.TB, pattern, guarded string, allowed ...string) {
	t.Helper()
	viols, err := boundaryViolations(pattern, guarded, allowed)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	if len(viols) > 0 {
		t.Fatalf("forbidden imports of %s:\n%s", guarded, strings.Join(viols, "\n"))
	}
}

// AssertNoDirectImports scans all non-test .go files in dir (typically "." from within the package)
// and fails if any import path satisfies the forbidden predicate. It does not follow build tags.
func AssertNoDirectImports(t testing.TB, dir string, forbidden func(importPath string) bool, reason string) {
	t.Helper()
	viols, err := directImportViolations(dir, forbidden)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	failIfDirectViolations(t, reason, viols)
}

// DomainImportForbidden returns a predicate matching any import path that points to the domain package.
func DomainImportForbidden(path string) bool {
	return strings.HasSuffix(path, "/pkg/domain") || strings.Contains(path, "/pkg/domain@")
}

// InternalImportForbidden returns a predicate matching any import path containing /internal/.
func InternalImportForbidden(path string) bool {
	return strings.Contains(path, "/internal/")
}

// DriverImportForbidden matches database and broker client libraries.
func DriverImportForbidden(path string) bool {
	for _, prefix := range []string{
		"modernc.org/sqlite",
		"github.com/jackc/pgx",
		"github.com/go-sql-driver/mysql",
		"github.com/redis/go-redis",
		"github.com/rabbitmq/amqp091-go",
		"github.com/aws/aws-sdk-go-v2",
	} {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

var loadPackages = func(mode packages.LoadMode, pattern string) ([]*packages.Package, error) {
	return packages.Load(&packages.Config{Mode: mode}, pattern)
}

func transitiveDependencyViolations(pattern string, forbidden func(path string) bool) ([]string, error) {
	pkgs, err := loadPackages(packages.NeedName|packages.NeedImports|packages.NeedDeps, pattern)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		if forbidden(p.PkgPath) {
			seen[p.PkgPath] = struct{}{}
		}
	})
	return sortedKeys(seen), nil
}

func boundaryViolations(pattern, guarded string, allowed []string) ([]string, error) {
	pkgs, err := loadPackages(packages.NeedName|packages.NeedImports, pattern)
	if err != nil {
		return nil, err
	}
	within := func(path, prefix string) bool {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	seen := make(map[string]struct{})
	for _, pkg := range pkgs {
		if within(pkg.PkgPath, guarded) {
			continue
		}
		skip := false
		for _, prefix := range allowed {
			if within(pkg.PkgPath, prefix) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		for importPath := range pkg.Imports {
			if within(importPath, guarded) {
				seen[pkg.PkgPath+": "+importPath] = struct{}{}
			}
		}
	}
	return sortedKeys(seen), nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
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
		path := filepath.Join(dir, name)
		fileAst, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return nil, err
		}
		for _, imp := range fileAst.Imports {
			ip := strings.Trim(imp.Path.Value, "\"")
			if forbidden(ip) {
				viols = append(viols, ip+" (in "+name+")")
			}
		}
	}
	return viols, nil
}

type fatalLogger interface {
	Fatalf(format string, args ...any)
}

func failIfTransitiveViolations(t fatalLogger, reason string, viols []string) {
	if len(viols) > 0 {
		t.Fatalf("forbidden transitive dependency detected (%s):\n%s", reason, strings.Join(viols, "\n"))
	}
}

func failIfDirectViolations(t fatalLogger, reason string, viols []string) {
	if len(viols) > 0 {
		t.Fatalf("forbidden direct imports detected (%s):\n%s", reason, strings.Join(viols, "\n"))
	}
}
