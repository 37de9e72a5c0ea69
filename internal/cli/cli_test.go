package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"tasksapi/internal/adapter/database"
	"tasksapi/internal/core/domain"
	"tasksapi/internal/core/util"
	"tasksapi/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) config.DatabaseConfig {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cli.db")

	t.Setenv("TASKS_DATABASE_DRIVER", "sqlite")
	t.Setenv("TASKS_DATABASE_PATH", path)
	t.Setenv("TASKS_AUTH_JWT_SECRET", "cli-test-secret-0123456789")

	cfg, err := config.Load("")
	require.NoError(t, err)

	return cfg.Database
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand()

	var out bytes.Buffer
	root.Command().SetOut(&out)
	root.Command().SetErr(&out)
	root.Command().SetArgs(args)

	err := root.Execute(context.Background())

	return out.String(), err
}

func TestCreateUser(t *testing.T) {
	dbConfig := setupEnv(t)

	out, err := run(t, "createuser", "--username", "admin", "--email", "admin@example.com", "--password", "secreto")
	require.NoError(t, err)
	assert.Contains(t, out, `User "admin" created`)

	repos, err := database.Open(context.Background(), dbConfig, nil)
	require.NoError(t, err)
	defer repos.Close()

	user, err := repos.Users.GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.NoError(t, util.ComparePassword("secreto", user.EncryptedPassword))
}

func TestCreateUserValidation(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "createuser", "--username", "admin", "--email", "admin@")

	fieldErrors, ok := domain.IsFieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fieldErrors, "email")
	assert.Contains(t, fieldErrors, "password")
}

func TestCreateUserDuplicate(t *testing.T) {
	setupEnv(t)

	args := []string{"createuser", "--username", "admin", "--email", "admin@example.com", "--password", "secreto"}

	_, err := run(t, args...)
	require.NoError(t, err)

	_, err = run(t, args...)
	fieldErrors, ok := domain.IsFieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fieldErrors, "username")
}

func TestMigrateUpAndDown(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "Migrations applied")

	out, err = run(t, "migrate", "down")
	require.NoError(t, err)
	assert.Contains(t, out, "Migrations reverted")
}

func TestInvalidConfigFails(t *testing.T) {
	setupEnv(t)
	t.Setenv("TASKS_AUTH_JWT_SECRET", "short")

	_, err := run(t, "migrate", "up")
	assert.ErrorContains(t, err, "config validation failed")
}

func TestUnknownCommand(t *testing.T) {
	_, err := run(t, "nope")
	assert.Error(t, err)
}
