package db

// Keys read from ItemTable.
const (
	KeyStatsigBootstrap = "workbench.experiments.statsigBootstrap"
	KeyAccessToken      = "cursorAuth/accessToken"
	KeyEmail            = "cursorAuth/cachedEmail"
	KeyMembership       = "cursorAuth/stripeMembershipType"
)

const sqlSelectValue = "SELECT value FROM ItemTable WHERE key = ?"
