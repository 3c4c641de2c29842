package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/cyberportal/pkg/cli/config"
)

func TestSlackConfigure(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled when nothing is set", func(t *testing.T) {
		svc, err := config.NewSlackForTest("", "").Configure(ctx)
		gt.NoError(t, err)
		gt.V(t, svc).Nil()
	})

	t.Run("token without channel is rejected", func(t *testing.T) {
		_, err := config.NewSlackForTest("xoxb-test", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("channel without token is rejected", func(t *testing.T) {
		_, err := config.NewSlackForTest("", "C0123").Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}

func TestSlackIsConfigured(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		channelID string
		want      bool
	}{
		{"both set", "xoxb-test", "C0123", true},
		{"only token", "xoxb-test", "", false},
		{"only channel", "", "C0123", false},
		{"neither", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.V(t, config.NewSlackForTest(tt.token, tt.channelID).IsConfigured()).Equal(tt.want)
		})
	}
}
