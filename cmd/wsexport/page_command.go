package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"wsexport/internal/services"
	"wsexport/internal/wikiapi"
)

func newPageCommand(ctx *commandContext) *cobra.Command {
	var lang string
	var source string

	cmd := &cobra.Command{
		Use:   "page <title>",
		Short: "Print the XHTML document fetched for a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			kind := strings.TrimSpace(source)
			if kind == "" {
				kind = cfg.Wiki.PageSource
			}
			client, err := ctx.wikiClient(lang)
			if err != nil {
				return err
			}
			pages, err := wikiapi.NewContentSource(kind, client)
			if err != nil {
				return err
			}
			xhtml, err := pages.GetPage(services.EnsureRequestID(cmd.Context()), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), xhtml)
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Wiki language code (defaults to wiki.default_lang)")
	cmd.Flags().StringVar(&source, "source", "", "Page source: query or rest (defaults to wiki.page_source)")
	return cmd
}
