//go:build integration

package testdb

import "os"

var (
	databaseURLEnvVars = []string{"IDSTORE_TEST_DB_URL", "DATABASE_URL"}
	redisAddrEnvVars   = []string{"IDSTORE_TEST_REDIS_ADDR", "REDIS_ADDR"}
)

// GetTestDatabaseURL returns the first non-empty database URL variable.
func GetTestDatabaseURL() string {
	return firstEnv(databaseURLEnvVars)
}

// GetTestRedisAddr returns the first non-empty Redis address variable.
func GetTestRedisAddr() string {
	return firstEnv(redisAddrEnvVars)
}

// IsIntegrationTestEnvironment returns true if a database URL is configured.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// ShouldSkipDatabaseTest returns true if no database URL is configured.
func ShouldSkipDatabaseTest() bool {
	return !IsIntegrationTestEnvironment()
}

// ShouldSkipRedisTest returns true if no Redis address is configured.
func ShouldSkipRedisTest() bool {
	return GetTestRedisAddr() == ""
}

func firstEnv(names []string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
