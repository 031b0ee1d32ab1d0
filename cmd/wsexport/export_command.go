package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"wsexport/internal/container"
	"wsexport/internal/convert"
	"wsexport/internal/logging"
	"wsexport/internal/preflight"
	"wsexport/internal/services"
	"wsexport/internal/tempfile"
	"wsexport/internal/textutil"
	"wsexport/internal/wikiapi"
)

type exportOptions struct {
	lang   string
	format string
	output string
	force  bool
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export <title>",
		Short: "Fetch a page and convert it to an e-book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := runExport(cmd.Context(), ctx, args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.lang, "lang", "l", "", "Wiki language code (defaults to wiki.default_lang)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "pdf-a4", "Output format key (see `wsexport formats`)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Destination file or directory (defaults to the current directory)")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite an existing destination file")
	return cmd
}

func runExport(ctx context.Context, cmdCtx *commandContext, title string, opts exportOptions) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errors.New("title is required")
	}
	format, err := convert.SelectFormat(opts.format)
	if err != nil {
		return "", err
	}
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return "", err
	}
	ctx = services.EnsureRequestID(ctx)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(cmdCtx.log(), "export"))

	if failed := preflight.Failed(preflight.RunAll(ctx, cfg, nil)); len(failed) > 0 {
		return "", services.Wrap(services.ErrConfiguration, "export", "preflight",
			fmt.Sprintf("%s: %s (run `wsexport doctor`)", failed[0].Name, failed[0].Detail), nil)
	}

	dest, err := exportDestination(opts.output, title, format.Extension, opts.force)
	if err != nil {
		return "", err
	}

	client, err := cmdCtx.wikiClient(opts.lang)
	if err != nil {
		return "", err
	}
	source, err := wikiapi.NewContentSource(cfg.Wiki.PageSource, client)
	if err != nil {
		return "", err
	}
	content, err := source.GetPage(ctx, title)
	if err != nil {
		return "", err
	}

	allocator, err := tempfile.NewAllocator(cfg.Paths.TempDir, tempfile.NewSlugCache(), tempfile.WithLogger(cmdCtx.log()))
	if err != nil {
		return "", err
	}
	orchOpts := []convert.Option{
		convert.WithTool(cfg.Convert.EbookConvert),
		convert.WithTimeout(cfg.ExecTimeout()),
		convert.WithLogger(cmdCtx.log()),
	}
	store, err := cmdCtx.openJobs()
	if err != nil {
		logging.WarnWithContext(logger, "job ledger unavailable", "ledger_open_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "export will not appear in history"),
		)
	} else {
		defer store.Close()
		orchOpts = append(orchOpts, convert.WithRecorder(store))
	}
	orch, err := convert.New(container.XHTMLBuilder{Dir: cfg.Paths.TempDir}, allocator, orchOpts...)
	if err != nil {
		return "", err
	}

	doc := container.Document{Title: title, Lang: client.Lang(), Content: content}
	converted, err := orch.Create(ctx, doc, format.Key)
	if err != nil {
		return "", err
	}
	if opts.force {
		if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("replace %s: %w", dest, err)
		}
	}
	if err := tempfile.MoveFile(converted, dest); err != nil {
		return "", fmt.Errorf("move %s to %s: %w", converted, dest, err)
	}
	logger.Info("export complete",
		logging.String("title", title),
		logging.String("format", format.Key),
		logging.String("path", dest),
		logging.String(logging.FieldEventType, "export_done"),
	)
	return dest, nil
}

// exportDestination resolves --output into a file path. An empty value or a
// directory gets a file named after the title.
func exportDestination(output, title, ext string, force bool) (string, error) {
	name := textutil.SanitizeFileName(title, "export") + "." + ext
	output = strings.TrimSpace(output)
	if output == "" {
		output = "."
	}
	expanded, err := filepath.Abs(output)
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}
	dest := expanded
	if info, err := os.Stat(expanded); err == nil && info.IsDir() {
		dest = filepath.Join(expanded, name)
	} else if strings.HasSuffix(output, string(os.PathSeparator)) {
		if err := os.MkdirAll(expanded, 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
		dest = filepath.Join(expanded, name)
	}
	if !force {
		if _, err := os.Stat(dest); err == nil {
			return "", fmt.Errorf("%s already exists (use --force to overwrite)", dest)
		}
	}
	return dest, nil
}
