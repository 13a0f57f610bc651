package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// Shared argument shapes.

func idArg(name, description string) mcp.ToolOption {
	return mcp.WithNumber(name, mcp.Required(), mcp.Description(description))
}

func limitArg(description string) mcp.ToolOption {
	return mcp.WithNumber("limit", mcp.Description(description), mcp.DefaultNumber(50))
}

func offsetArg() mcp.ToolOption {
	return mcp.WithNumber("offset", mcp.Description("Pagination offset"), mcp.DefaultNumber(0))
}

func numberList(name, description string, opts ...mcp.PropertyOption) mcp.ToolOption {
	return mcp.WithArray(name, append([]mcp.PropertyOption{
		mcp.Description(description),
		mcp.Items(map[string]any{"type": "number"}),
	}, opts...)...)
}

func stringList(name, description string, opts ...mcp.PropertyOption) mcp.ToolOption {
	return mcp.WithArray(name, append([]mcp.PropertyOption{
		mcp.Description(description),
		mcp.Items(map[string]any{"type": "string"}),
	}, opts...)...)
}

func objectList(name, description string, opts ...mcp.PropertyOption) mcp.ToolOption {
	return mcp.WithArray(name, append([]mcp.PropertyOption{
		mcp.Description(description),
		mcp.Items(map[string]any{"type": "object"}),
	}, opts...)...)
}

// deleted issues a DELETE and reports success with message.
func deleted(ctx context.Context, api API, path, message string) (any, error) {
	if _, err := api.Delete(ctx, path); err != nil {
		return nil, err
	}
	return map[string]any{"success": true, "message": message}, nil
}

// get returns a handler that GETs a fixed path with no parameters.
func get(path string) HandlerFunc {
	return func(ctx context.Context, api API, _ Args) (any, error) {
		return api.Get(ctx, path, nil)
	}
}

// list returns a handler that GETs path with every argument as a query
// parameter.
func list(path string) HandlerFunc {
	return func(ctx context.Context, api API, args Args) (any, error) {
		return api.Get(ctx, path, args.Map())
	}
}

// getByID returns a handler that GETs prefix/{idKey}.
func getByID(prefix, idKey string) HandlerFunc {
	return func(ctx context.Context, api API, args Args) (any, error) {
		return api.Get(ctx, prefix+"/"+args.ID(idKey), nil)
	}
}

// patchByID returns a handler that PATCHes prefix/{idKey} with the
// remaining arguments.
func patchByID(prefix, idKey string) HandlerFunc {
	return func(ctx context.Context, api API, args Args) (any, error) {
		return api.Patch(ctx, prefix+"/"+args.ID(idKey), args.Without(idKey))
	}
}

// deleteByID returns a handler that DELETEs prefix/{idKey}.
func deleteByID(prefix, idKey, message string) HandlerFunc {
	return func(ctx context.Context, api API, args Args) (any, error) {
		return deleted(ctx, api, prefix+"/"+args.ID(idKey), message)
	}
}

// passthrough returns a handler that POSTs the arguments unchanged as the
// request body.
func passthrough(path string) HandlerFunc {
	return func(ctx context.Context, api API, args Args) (any, error) {
		return api.Post(ctx, path, args.Map())
	}
}
