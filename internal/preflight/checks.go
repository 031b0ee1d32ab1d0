package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"wsexport/internal/config"
	"wsexport/internal/deps"
	"wsexport/internal/wikiapi"
)

const wikiCheckTimeout = 10 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps resolves the converter binary.
func CheckSystemDeps(cfg *config.Config) []Result {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "ebook-convert",
			Command:     cfg.Convert.EbookConvert,
			Description: "Required for every output format",
		},
	})
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		result := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional, Detail: status.Detail}
		if status.Available {
			result.Detail = status.Path
		}
		results = append(results, result)
	}
	return results
}

// CheckWiki issues a siteinfo query to confirm the API answers.
func CheckWiki(ctx context.Context, client *wikiapi.Client) Result {
	const name = "Wiki API"

	checkCtx, cancel := context.WithTimeout(ctx, wikiCheckTimeout)
	defer cancel()

	result, err := client.Query(checkCtx, wikiapi.Params{"meta": "siteinfo", "siprop": "general"})
	if err != nil {
		return Result{Name: name, Detail: summarizeWikiError(client.Domain(), err)}
	}
	sitename := ""
	if query, ok := result["query"].(map[string]any); ok {
		if general, ok := query["general"].(map[string]any); ok {
			sitename, _ = general["sitename"].(string)
		}
	}
	if sitename == "" {
		return Result{Name: name, Passed: true, Detail: client.Domain()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", client.Domain(), sitename)}
}

func summarizeWikiError(domain string, err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain + ": timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain + ": unreachable (timeout)"
	}
	return fmt.Sprintf("%s: %v", domain, err)
}
