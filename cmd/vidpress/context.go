package main

import (
	"strings"
	"sync"

	"vidpress/internal/config"
)

type commandContext struct {
	serverFlag *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(serverFlag, configFlag *string) *commandContext {
	return &commandContext{
		serverFlag: serverFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// serverURL resolves the API base URL: the --server flag wins, otherwise the
// configured bind address.
func (c *commandContext) serverURL() string {
	if c.serverFlag != nil {
		if url := strings.TrimSpace(*c.serverFlag); url != "" {
			return url
		}
	}
	if cfg, err := c.ensureConfig(); err == nil && cfg != nil {
		return "http://" + cfg.Paths.APIBind
	}
	return "http://127.0.0.1:7823"
}

func (c *commandContext) client() *apiClient {
	return newAPIClient(c.serverURL())
}
