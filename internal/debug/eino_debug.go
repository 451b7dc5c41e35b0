package debug

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/devops"
	"github.com/rs/zerolog"

	"github.com/dyike/FinSage/config"
)

// EinoDebugger starts the eino visual debug plugin so the analysis graph can
// be inspected and replayed from the devops UI.
type EinoDebugger struct {
	config config.Config
	logger zerolog.Logger
}

func NewEinoDebugger(cfg config.Config, log zerolog.Logger) *EinoDebugger {
	return &EinoDebugger{
		config: cfg,
		logger: log,
	}
}

// Initialize must run before the analysis graph is compiled. It is a no-op
// when the debugger is disabled.
func (d *EinoDebugger) Initialize(ctx context.Context) error {
	if !d.config.EinoDebugEnabled {
		return nil
	}

	d.logger.Debug().Int("port", d.config.EinoDebugPort).Msg("initializing eino debug plugin")

	if err := devops.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize Eino debug plugin: %w", err)
	}

	d.logger.Info().Str("url", d.GetDebugURL()).Msg("eino debug server ready")
	return nil
}

func (d *EinoDebugger) IsEnabled() bool {
	return d.config.EinoDebugEnabled
}

func (d *EinoDebugger) GetDebugURL() string {
	if !d.config.EinoDebugEnabled {
		return ""
	}
	return fmt.Sprintf("http://localhost:%d", d.config.EinoDebugPort)
}
