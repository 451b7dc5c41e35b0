package debug

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dyike/FinSage/config"
	"github.com/dyike/FinSage/internal/logger"
)

func TestDisabledDebuggerIsNoop(t *testing.T) {
	cfg := *config.DefaultConfigWithRoot(t.TempDir())
	d := NewEinoDebugger(cfg, logger.Nop())

	assert.False(t, d.IsEnabled())
	assert.Empty(t, d.GetDebugURL())
	assert.NoError(t, d.Initialize(context.Background()))
}

func TestDebugURL(t *testing.T) {
	cfg := *config.DefaultConfigWithRoot(t.TempDir())
	cfg.EinoDebugEnabled = true
	cfg.EinoDebugPort = 6060
	d := NewEinoDebugger(cfg, logger.Nop())

	assert.True(t, d.IsEnabled())
	assert.Equal(t, "http://localhost:6060", d.GetDebugURL())
}
