package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("LEDGERBOOK_TEST_MODE", "1")
		if os.Getenv("REPORT_CACHE_TTL") == "" {
			_ = os.Setenv("REPORT_CACHE_TTL", "0s")
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
