package config

import (
	"os"
	"path/filepath"
)

// Environment variable names.
const (
	EnvDataDir           = "CURSOR_DATA_DIR"
	EnvDatabasePath      = "CURSOR_DB_PATH"
	EnvAPIBaseURL        = "CURSOR_API_BASE"
	EnvRequestTimeout    = "CURSOR_REQUEST_TIMEOUT"
	EnvPageSize          = "CURSOR_PAGE_SIZE"
	EnvMaxConcurrency    = "CURSOR_MAX_CONCURRENCY"
	EnvRequestsPerSecond = "CURSOR_REQUESTS_PER_SECOND"
	EnvDailyBudget       = "CURSOR_DAILY_BUDGET"
	EnvRefreshInterval   = "CURSOR_REFRESH_INTERVAL"
	EnvDebug             = "DEBUG"
)

// StateDatabasePath returns the location of state.vscdb under a Cursor data dir.
func StateDatabasePath(dataDir string) string {
	return filepath.Join(dataDir, "User", "globalStorage", "state.vscdb")
}

// getDefaultDataDir returns Cursor's per-user data directory:
// ~/Library/Application Support/Cursor on macOS, %AppData%\Cursor on
// Windows and $XDG_CONFIG_HOME/Cursor elsewhere.
func getDefaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "Cursor"
		}
		return filepath.Join(home, ".config", "Cursor")
	}
	return filepath.Join(dir, "Cursor")
}
