//go:build integration

package league_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/Black-And-White-Club/frolf-club/integration_tests/testutils"
)

var env *testutils.TestEnv

func TestMain(m *testing.M) {
	ctx := context.Background()
	var err error
	env, err = testutils.Env(ctx)
	if err != nil {
		log.Fatalf("failed to set up test environment: %v", err)
	}
	code := m.Run()
	env.Terminate(ctx)
	os.Exit(code)
}
