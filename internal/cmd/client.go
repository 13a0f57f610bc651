package cmd

import (
	"github.com/fulmenhq/gofulmen/logging"

	"github.com/keapmcp/keap-mcp/internal/config"
	"github.com/keapmcp/keap-mcp/internal/keap"
	"github.com/keapmcp/keap-mcp/internal/tools"
)

// newKeapClient builds a client from the keap config section.
func newKeapClient(cfg config.KeapConfig, logger *logging.Logger) (*keap.Client, error) {
	return keap.NewClient(cfg.AccessToken, cfg.APIKey,
		keap.WithBaseURL(cfg.BaseURL),
		keap.WithBaseURLV2(cfg.BaseURLV2),
		keap.WithTimeout(cfg.Timeout),
		keap.WithRequestsPerSecond(cfg.RequestsPerSecond),
		keap.WithPageLimit(cfg.PageLimit),
		keap.WithRetry(keap.RetryPolicy{
			MaxRetries:      cfg.Retry.MaxRetries,
			InitialInterval: cfg.Retry.InitialInterval,
			MaxInterval:     cfg.Retry.MaxInterval,
		}),
		keap.WithLogger(logger),
	)
}

// newRegistry binds every tool to client. A nil recorder disables auditing.
func newRegistry(client *keap.Client, recorder tools.Recorder, logger *logging.Logger) *tools.Registry {
	opts := []tools.Option{tools.WithLogger(logger)}
	if recorder != nil {
		opts = append(opts, tools.WithRecorder(recorder))
	}
	return tools.NewRegistry(client, opts...)
}
