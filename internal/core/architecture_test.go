package core

import (
	"testing"

	"cinemacore/testutil"
)

func TestCoreDoesNotDependOnDrivers(t *testing.T) {
	testutil.AssertNoTransitiveDependency(t, ".", testutil.DriverImportForbidden, "core must stay runnable without database or broker clients")
}
