package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// idstore runs one command line and returns what it printed.
func idstore(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return strings.TrimSpace(stdout.String()), err
}

func mustIdstore(t *testing.T, args ...string) string {
	t.Helper()
	out, err := idstore(t, args...)
	require.NoError(t, err, "idstore %s", strings.Join(args, " "))
	return out
}

// useSQLite points the CLI at a fresh database file through the
// environment, the way an operator would.
func useSQLite(t *testing.T) {
	t.Helper()
	t.Setenv("IDSTORE_STORE_DRIVER", "sqlite")
	t.Setenv("IDSTORE_STORE_PATH", filepath.Join(t.TempDir(), "identity.db"))
	t.Setenv("IDSTORE_LOG_LEVEL", "error")
}

func TestMigrate(t *testing.T) {
	useSQLite(t)

	assert.Equal(t, "schema version 1", mustIdstore(t, "migrate"))
	// A second run has nothing left to apply.
	assert.Equal(t, "schema version 1", mustIdstore(t, "migrate"))
}

func TestMigrateMemoryDriver(t *testing.T) {
	t.Setenv("IDSTORE_STORE_DRIVER", "memory")
	t.Setenv("IDSTORE_LOG_LEVEL", "error")

	assert.Equal(t, "driver memory has no schema to migrate", mustIdstore(t, "migrate"))
}

func TestDrivers(t *testing.T) {
	t.Setenv("IDSTORE_LOG_LEVEL", "error")

	out := mustIdstore(t, "drivers")
	assert.Equal(t, []string{"memory", "postgres", "redis", "sqlite"}, strings.Fields(out))
}

func TestUserAndRoleLifecycle(t *testing.T) {
	useSQLite(t)

	id := mustIdstore(t, "user", "create", "alice", "--email", "alice@example.com")
	_, err := uuid.Parse(id)
	assert.NoError(t, err, "string keys are random UUIDs")

	mustIdstore(t, "role", "create", "Admin")
	mustIdstore(t, "user", "add-role", "alice", "Admin")

	assert.Equal(t, "alice", mustIdstore(t, "role", "members", "Admin"))
	assert.Equal(t, "Admin", mustIdstore(t, "role", "list"))

	found := mustIdstore(t, "user", "find", "ALICE")
	assert.Contains(t, found, `"normalized_user_name": "ALICE"`)
	assert.Contains(t, found, `"name": "Admin"`)

	byEmail := mustIdstore(t, "user", "find", "--email", "Alice@Example.com")
	assert.Contains(t, byEmail, id)

	_, err = idstore(t, "user", "add-role", "alice", "admin")
	assert.Error(t, err, "membership checks ignore case")

	mustIdstore(t, "user", "remove-role", "alice", "admin")
	assert.Empty(t, mustIdstore(t, "role", "members", "Admin"))

	mustIdstore(t, "user", "delete", "alice")
	_, err = idstore(t, "user", "find", "alice")
	assert.Error(t, err)
}

func TestDuplicateNamesAreRejected(t *testing.T) {
	useSQLite(t)

	mustIdstore(t, "user", "create", "bob")
	_, err := idstore(t, "user", "create", "BOB")
	assert.Error(t, err)

	mustIdstore(t, "role", "create", "Editors")
	_, err = idstore(t, "role", "create", "editors")
	assert.Error(t, err)
}

func TestAddToMissingRole(t *testing.T) {
	useSQLite(t)

	mustIdstore(t, "user", "create", "carol")
	_, err := idstore(t, "user", "add-role", "carol", "Ghosts")
	assert.Error(t, err)
}

func TestUnlock(t *testing.T) {
	useSQLite(t)

	mustIdstore(t, "user", "create", "dave")
	mustIdstore(t, "user", "unlock", "dave")
}

func TestManualSaveMode(t *testing.T) {
	useSQLite(t)
	t.Setenv("IDSTORE_STORE_AUTO_SAVE_CHANGES", "false")

	mustIdstore(t, "user", "create", "erin")
	assert.Contains(t, mustIdstore(t, "user", "find", "erin"), `"user_name": "erin"`)
}

func TestInt64AndUUIDKeys(t *testing.T) {
	useSQLite(t)
	t.Setenv("IDSTORE_IDENTITY_KEY_TYPE", "int64")
	id := mustIdstore(t, "user", "create", "frank")
	assert.NotEmpty(t, id)
	assert.NotContains(t, id, "-")

	useSQLite(t)
	t.Setenv("IDSTORE_IDENTITY_KEY_TYPE", "uuid")
	id = mustIdstore(t, "role", "create", "Auditors")
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func readMetrics(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "metrics textfile is written on exit")
	return string(data)
}

func TestMetricsTextfileFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idstore.prom")
	t.Setenv("IDSTORE_STORE_DRIVER", "memory")
	t.Setenv("IDSTORE_LOG_LEVEL", "error")
	t.Setenv("IDSTORE_METRICS_ENABLED", "true")
	t.Setenv("IDSTORE_METRICS_TEXTFILE", path)

	id := mustIdstore(t, "user", "create", "grace")
	assert.NotEmpty(t, id)

	metrics := readMetrics(t, path)
	assert.Contains(t, metrics, `idstore_docstore_commits_total{result="ok"} 1`)
	assert.Contains(t, metrics, "idstore_docstore_commit_duration_seconds_count 1")
	assert.Contains(t, metrics, `idstore_docstore_reads_total{collection="Users",op="list",result="ok"}`)
}

func TestMetricsFileFlag(t *testing.T) {
	useSQLite(t)
	path := filepath.Join(t.TempDir(), "idstore.prom")

	mustIdstore(t, "role", "create", "Admin")
	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist, "nothing is written without the flag")

	mustIdstore(t, "--metrics-file", path, "role", "create", "Auditors")
	assert.Contains(t, readMetrics(t, path), `idstore_docstore_commits_total{result="ok"} 1`)

	_, err = idstore(t, "--metrics-file", path, "role", "create", "Auditors")
	require.Error(t, err, "duplicate role name")
	metrics := readMetrics(t, path)
	assert.NotContains(t, metrics, `idstore_docstore_commits_total{result="ok"}`, "each run replaces the file")
	assert.Contains(t, metrics, `idstore_docstore_reads_total{collection="Roles",op="list",result="ok"}`)
}

func TestMetricsRequireTextfile(t *testing.T) {
	t.Setenv("IDSTORE_STORE_DRIVER", "memory")
	t.Setenv("IDSTORE_LOG_LEVEL", "error")

	_, err := idstore(t, "--metrics-file", "", "user", "create", "grace")
	assert.Error(t, err, "an empty file name is rejected")

	t.Setenv("IDSTORE_METRICS_ENABLED", "true")
	_, err = idstore(t, "user", "create", "grace")
	assert.Error(t, err, "metrics need somewhere to go")
}

func TestExplicitEnvFileMustExist(t *testing.T) {
	t.Setenv("IDSTORE_LOG_LEVEL", "error")

	_, err := idstore(t, "--env-file", filepath.Join(t.TempDir(), "missing.env"), "drivers")
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("IDSTORE_STORE_DRIVER", "cassandra")

	_, err := idstore(t, "drivers")
	assert.Error(t, err)
}
