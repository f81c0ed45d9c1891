package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("VINYLDESK_TEST_MODE") == "" {
			_ = os.Setenv("VINYLDESK_TEST_MODE", "1")
		}
	})
}
