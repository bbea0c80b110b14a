package domain

import (
	"testing"

	"cinemacore/testutil"
)

// The domain layer must stay free of internal implementation packages.
func TestDomainDoesNotImportInternal(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden, "domain must not depend on internal packages")
}
