package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/cyberportal/pkg/cli/config"
)

func TestSentryConfigure(t *testing.T) {
	t.Run("disabled without DSN", func(t *testing.T) {
		var cfg config.Sentry
		gt.B(t, cfg.IsEnabled()).False()

		flush, err := cfg.Configure()
		gt.NoError(t, err)
		gt.V(t, flush).NotNil()
		flush()
	})

	t.Run("malformed DSN is rejected", func(t *testing.T) {
		cfg := config.NewSentryForTest("not a dsn")
		_, err := cfg.Configure()
		gt.Error(t, err)
	})
}
