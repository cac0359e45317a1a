package terminal

import (
	"os"

	"github.com/Strob0t/lukthan/internal/port/notifier"
)

func init() {
	notifier.Register(providerName, func(config map[string]string) (notifier.Notifier, error) {
		if config["stream"] == "stdout" {
			return NewNotifier(os.Stdout), nil
		}
		return NewNotifier(os.Stderr), nil
	})
}
