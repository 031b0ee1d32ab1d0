package config

import (
	"os"
	"path/filepath"
)

const (
	defaultStateDir       = "~/.local/share/wsexport"
	defaultLogDir         = "~/.local/share/wsexport/logs"
	defaultUserAgent      = "Wikisource Export/0.1"
	defaultConnectTimeout = 10
	defaultRequestTimeout = 60
	defaultExecTimeout    = 120
	defaultEbookConvert   = "ebook-convert"
	defaultRetentionDays  = 30

	// PageSourceQuery fetches parsed revisions through the query API.
	PageSourceQuery = "query"
	// PageSourceREST fetches rendered HTML from the REST page endpoint.
	PageSourceREST = "rest"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TempDir:  filepath.Join(os.TempDir(), "wsexport"),
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Wiki: Wiki{
			UserAgent:      defaultUserAgent,
			ConnectTimeout: defaultConnectTimeout,
			RequestTimeout: defaultRequestTimeout,
			PageSource:     PageSourceQuery,
			Scheme:         "https",
		},
		Convert: Convert{
			EbookConvert: defaultEbookConvert,
			ExecTimeout:  defaultExecTimeout,
		},
		Logging: Logging{
			Format:        "console",
			Level:         "info",
			RetentionDays: defaultRetentionDays,
		},
	}
}
