package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wsexport/internal/config"
	"wsexport/internal/preflight"
	"wsexport/internal/wikiapi"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var lang string
	var offline bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the converter, directories, and wiki connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var client *wikiapi.Client
			if !offline {
				if client, err = ctx.wikiClient(lang); err != nil {
					return err
				}
			}

			results := preflight.RunAll(cmd.Context(), cfg, client)
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, paint("== Dependencies ==", ansiBlue, colorize))
			for _, r := range results {
				fmt.Fprintln(out, renderStatusLine(r.Name, resultKind(r), r.Detail, colorize))
			}
			fmt.Fprintln(out, renderStatusLine("Job ledger", statusInfo, cfg.JobsDBPath(), colorize))
			fmt.Fprintln(out, renderStatusLine("Page source", statusInfo, pageSourceLabel(cfg), colorize))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%s failed", pluralize(len(failed), "required check"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Wiki language code to probe (defaults to wiki.default_lang)")
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the wiki connectivity check")
	return cmd
}

func resultKind(r preflight.Result) statusKind {
	switch {
	case r.Passed:
		return statusOK
	case r.Optional:
		return statusWarn
	default:
		return statusError
	}
}

func pageSourceLabel(cfg *config.Config) string {
	if cfg.Wiki.BaseURL != "" {
		return fmt.Sprintf("%s via %s", cfg.Wiki.PageSource, cfg.Wiki.BaseURL)
	}
	return cfg.Wiki.PageSource
}
