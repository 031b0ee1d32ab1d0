package preflight

import (
	"context"

	"wsexport/internal/config"
	"wsexport/internal/wikiapi"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Optional results never block an export.
	Optional bool
}

// RunAll checks the converter binary, the configured directories, and, when
// client is non-nil, the wiki API.
func RunAll(ctx context.Context, cfg *config.Config, client *wikiapi.Client) []Result {
	if cfg == nil {
		return nil
	}

	results := CheckSystemDeps(cfg)
	results = append(results,
		CheckDirectoryAccess("Temp directory", cfg.Paths.TempDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	)
	if client != nil {
		wiki := CheckWiki(ctx, client)
		wiki.Optional = true
		results = append(results, wiki)
	}
	return results
}

// Failed returns the required results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			out = append(out, r)
		}
	}
	return out
}
