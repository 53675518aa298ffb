package fiscal

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/security"
)

// PluginValidator runs a fiscal plugin binary and forwards requests to it.
type PluginValidator struct {
	domain.FiscalValidator
	client *plugin.Client
	logger *slog.Logger
}

// LoadPlugin starts the plugin at path and dispenses its validator.
func LoadPlugin(path string, logger *slog.Logger) (*PluginValidator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		return nil, fmt.Errorf("fiscal plugin path is required")
	}

	abs, err := security.Executable(path)
	if err != nil {
		return nil, fmt.Errorf("fiscal plugin: %w", err)
	}

	logger.Info("loading fiscal plugin", "binary", abs)

	// #nosec G204 -- path comes from operator configuration
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  HandshakeConfig,
		Plugins:          PluginMap(nil),
		Cmd:              exec.Command(abs),
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:   "fiscal-plugin",
			Level:  hclog.Info,
			Output: os.Stderr,
		}),
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("connect fiscal plugin: %w", err)
	}

	raw, err := rpcClient.Dispense(PluginName)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("dispense fiscal plugin: %w", err)
	}

	validator, ok := raw.(domain.FiscalValidator)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("fiscal plugin does not implement FiscalValidator")
	}

	return &PluginValidator{FiscalValidator: validator, client: client, logger: logger}, nil
}

// Close kills the plugin process.
func (v *PluginValidator) Close() error {
	v.client.Kill()
	v.logger.Info("fiscal plugin stopped")
	return nil
}
