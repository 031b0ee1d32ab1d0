package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"wsexport/internal/services"
	"wsexport/internal/wikiapi"
)

func newQueryCommand(ctx *commandContext) *cobra.Command {
	var lang string
	var single bool

	cmd := &cobra.Command{
		Use:   "query <key=value>...",
		Short: "Run an API query, following continuations, and print the merged JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseQueryParams(args)
			if err != nil {
				return err
			}
			client, err := ctx.wikiClient(lang)
			if err != nil {
				return err
			}
			runCtx := services.EnsureRequestID(cmd.Context())
			var result map[string]any
			if single {
				result, err = client.Query(runCtx, params)
			} else {
				result, err = client.CompleteQuery(runCtx, params)
			}
			if err != nil {
				return err
			}
			data, err := wikiapi.PrettyJSON(result)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Wiki language code (defaults to wiki.default_lang)")
	cmd.Flags().BoolVar(&single, "single", false, "Fetch only the first round instead of following continuations")
	return cmd
}

func parseQueryParams(args []string) (wikiapi.Params, error) {
	params := make(wikiapi.Params, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q (expected key=value)", arg)
		}
		params[key] = value
	}
	return params, nil
}
