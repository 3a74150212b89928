// Package guard switches the process into test mode on import so that
// packages under internal/ skip request logging and other runtime side
// effects.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("LEDGERBOOK_TEST_MODE") == "" {
			_ = os.Setenv("LEDGERBOOK_TEST_MODE", "1")
		}
	})
}
