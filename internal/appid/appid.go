// Package appid exposes the keap-mcp application identity.
package appid

import (
	"context"
	"errors"

	"github.com/fulmenhq/gofulmen/appidentity"
)

var identity = &appidentity.Identity{
	BinaryName:  "keap-mcp",
	Vendor:      "keapmcp",
	EnvPrefix:   "KEAP_MCP_",
	ConfigName:  "keap-mcp",
	Description: "MCP tool server for the Keap CRM REST API",
}

// Get returns the identity found through FULMEN_APP_IDENTITY_PATH or a
// .fulmen/app.yaml in the working tree, falling back to the built-in
// keap-mcp identity when neither exists.
func Get(ctx context.Context) (*appidentity.Identity, error) {
	found, err := appidentity.Get(ctx)
	if err == nil && found != nil {
		return found, nil
	}
	var notFound *appidentity.NotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return nil, err
	}
	return Default(), nil
}

// Default returns a copy of the built-in identity.
func Default() *appidentity.Identity {
	copied := *identity
	return &copied
}
