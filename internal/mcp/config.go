package mcp

import (
	"github.com/minionworks/salt-mcp/internal/logging"
	"github.com/minionworks/salt-mcp/internal/mcp/tools"
	"github.com/minionworks/salt-mcp/internal/saltapi"
)

type Config struct {
	ToolAdapters map[string]ToolAdapter
	Client       *saltapi.Client
}

// LoadConfig builds the salt-api client from process configuration and wires
// one adapter per exposed tool around it.
func LoadConfig(log logging.Logger) (Config, error) {
	clientCfg, err := saltapi.LoadConfig()
	if err != nil {
		return Config{}, err
	}
	client, err := saltapi.New(clientCfg, log.WithName("saltapi"))
	if err != nil {
		return Config{}, err
	}

	return Config{
		ToolAdapters: map[string]ToolAdapter{
			"list_all_minions":     &tools.ListAllMinionsHandler{Service: client},
			"ping_minions":         &tools.PingMinionsHandler{Service: client},
			"get_minion_info":      &tools.GetMinionInfoHandler{Service: client},
			"execute_salt_command": &tools.ExecuteSaltCommandHandler{Service: client},
		},
		Client: client,
	}, nil
}
