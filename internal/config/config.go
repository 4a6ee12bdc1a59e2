package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"EmiCollect"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Path string `envconfig:"DB_PATH" default:"emicollect.db"`
	}

	Backup struct {
		// Dir is where on-demand backup files land, the local stand-in for
		// the phone's downloads folder.
		Dir string `envconfig:"BACKUP_DIR" default:"backups"`
	}

	Cloud struct {
		BaseURL string `envconfig:"CLOUD_BASE_URL"`
		Token   string `envconfig:"CLOUD_TOKEN"`
	}

	Settlement struct {
		// FixedWeekAdvance reproduces the legacy schedule where every payment
		// pushed the due date out seven days, monthly loans included.
		FixedWeekAdvance bool `envconfig:"SETTLEMENT_FIXED_WEEK_ADVANCE" default:"false"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
