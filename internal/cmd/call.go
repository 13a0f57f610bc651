package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keapmcp/keap-mcp/internal/config"
	apperrors "github.com/keapmcp/keap-mcp/internal/errors"
	"github.com/keapmcp/keap-mcp/internal/observability"
	"github.com/keapmcp/keap-mcp/internal/store"
	"github.com/keapmcp/keap-mcp/internal/tools"
)

var (
	callArgsJSON string
	callArgsFile string
	callSet      []string
)

var callCmd = &cobra.Command{
	Use:   "call <tool>",
	Short: "Invoke one Keap tool and print its result",
	Long: `Invoke a tool exactly as an MCP client would and print the JSON result.

Arguments come from --args (a JSON object), --args-file, and repeated
--set key=value pairs applied on top. Values given to --set are parsed as
JSON when possible, otherwise taken as strings.

Examples:
  keap-mcp call keap_get_contact --set contact_id=42
  keap-mcp call keap_list_contacts --args '{"limit": 5, "email": "a@b.c"}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := strings.TrimSpace(args[0])

		toolArgs, err := parseCallArgs(callArgsJSON, callArgsFile, callSet)
		if err != nil {
			return apperrors.NewInvalidInputError(err.Error())
		}

		cfg, err := config.Load(ctx)
		if err != nil {
			return apperrors.WrapConfigInvalid(ctx, err, "invalid configuration")
		}

		client, err := newKeapClient(cfg.Keap, observability.CLILogger)
		if err != nil {
			return apperrors.FromToolError(ctx, err)
		}

		var recorder tools.Recorder
		if cfg.Audit.Enabled {
			db, err := openStore(ctx, cfg.Audit)
			if err != nil {
				return apperrors.WrapDatabaseError(ctx, err, "failed to open audit store")
			}
			defer db.Close() // nolint:errcheck // best-effort cleanup
			defer func() {
				rl := client.RateLimit()
				_ = db.SaveRateLimitSnapshot(context.Background(), store.RateLimitSnapshot{
					API:       "v1",
					Remaining: rl.Remaining,
					ResetAt:   rl.ResetAt,
				})
			}()
			recorder = db
		}

		reg := newRegistry(client, recorder, observability.CLILogger)
		result, err := reg.Call(ctx, name, toolArgs)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), tools.ErrorText(name, err))
			return apperrors.FromToolError(ctx, err)
		}

		text, err := tools.FormatResult(result)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	},
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().StringVar(&callArgsJSON, "args", "", "tool arguments as a JSON object")
	callCmd.Flags().StringVar(&callArgsFile, "args-file", "", "read tool arguments from a JSON file (- for stdin)")
	callCmd.Flags().StringArrayVar(&callSet, "set", nil, "set one argument as key=value (repeatable)")
}

// parseCallArgs merges the JSON object sources and key=value pairs into
// the argument map handed to the tool.
func parseCallArgs(rawJSON, file string, pairs []string) (map[string]any, error) {
	args := map[string]any{}

	if file != "" {
		var (
			data []byte
			err  error
		)
		if file == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(file)
		}
		if err != nil {
			return nil, fmt.Errorf("read args file: %w", err)
		}
		if err := mergeJSONObject(args, data); err != nil {
			return nil, fmt.Errorf("args file: %w", err)
		}
	}

	if strings.TrimSpace(rawJSON) != "" {
		if err := mergeJSONObject(args, []byte(rawJSON)); err != nil {
			return nil, fmt.Errorf("--args: %w", err)
		}
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("--set expects key=value, got %q", pair)
		}
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			decoded = value
		}
		args[key] = decoded
	}
	return args, nil
}

func mergeJSONObject(dst map[string]any, data []byte) error {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("expected a JSON object: %w", err)
	}
	for k, v := range obj {
		dst[k] = v
	}
	return nil
}

