package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wsexport/internal/convert"
)

func newFormatsCommand() *cobra.Command {
	var showParams bool

	cmd := &cobra.Command{
		Use:         "formats",
		Short:       "List supported output formats",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			headers := []string{"Key", "Extension", "MIME type"}
			if showParams {
				headers = append(headers, "Converter params")
			}
			formats := convert.SupportedFormats()
			rows := make([][]string, 0, len(formats))
			for _, f := range formats {
				row := []string{f.Key, f.Extension, f.MimeType}
				if showParams {
					row = append(row, f.Params)
				}
				rows = append(rows, row)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showParams, "params", false, "Show the arguments passed to ebook-convert")
	return cmd
}
