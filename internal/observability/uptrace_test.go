package observability

import (
	"context"
	"testing"

	"github.com/qchockey/lheqstats/internal/config"
	"github.com/qchockey/lheqstats/internal/platform/logging"
)

func TestInitUptrace_StaysOffWithoutAnything(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.Config
	}{
		{
			name: "disabled by flag",
			cfg: config.Config{
				UptraceEnabled: false,
				UptraceDSN:     "https://token@api.uptrace.dev/1",
			},
		},
		{
			name: "enabled without dsn",
			cfg: config.Config{
				UptraceEnabled: true,
				UptraceDSN:     "   ",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.ServiceName = "lheqstats"
			tc.cfg.ServiceVersion = "dev"
			tc.cfg.AppEnv = config.EnvDev

			shutdown, err := InitUptrace(tc.cfg, logging.NewNop())
			if err != nil {
				t.Fatalf("init uptrace: %v", err)
			}
			if err := shutdown(context.Background()); err != nil {
				t.Fatalf("shutdown uptrace: %v", err)
			}
		})
	}
}
