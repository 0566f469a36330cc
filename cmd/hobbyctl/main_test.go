package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"hobbyhub/internal/models"
	"hobbyhub/internal/testutil/apiserver"

	"github.com/stretchr/testify/require"
)

type cli struct {
	t    *testing.T
	base []string
}

func newCLI(t *testing.T) *cli {
	srv := apiserver.Start(t)
	dir := t.TempDir()
	return &cli{t: t, base: []string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--storage", filepath.Join(dir, "storage.json"),
		"--base-url", apiserver.APIURL(srv),
		"--log-level", "error",
	}}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(append([]string{}, args...), c.base...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func TestCLI_SessionLifecycle(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("me")
	require.ErrorIs(t, err, errNotLoggedIn)

	var user models.User
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("register",
		"--email", "cli@example.com", "--username", "cli", "--password", "password-123")), &user))
	require.Equal(t, "cli@example.com", user.Email)

	var me models.User
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("me")), &me))
	require.Equal(t, user.ID, me.ID)

	require.Contains(t, c.mustRun("logout"), "Logged out")
	_, err = c.run("me")
	require.ErrorIs(t, err, errNotLoggedIn)

	c.mustRun("login", "--email", "cli@example.com", "--password", "password-123")
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("me")), &me))
	require.Equal(t, user.ID, me.ID)
}

func TestCLI_HobbiesAndFeed(t *testing.T) {
	c := newCLI(t)
	c.mustRun("register", "--email", "feed@example.com", "--username", "feeder", "--password", "password-123")

	var hobby models.Hobby
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("hobbies", "create", "Bird watching", "--category", "outdoor")), &hobby))
	require.Equal(t, models.CategoryOutdoor, hobby.Category)

	var got models.Hobby
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("hobbies", "get", hobby.ID)), &got))
	require.True(t, got.Joined)

	require.NoError(t, json.Unmarshal([]byte(c.mustRun("hobbies", "leave", hobby.ID)), &got))
	require.False(t, got.Joined)

	var f feed
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("feed", "--limit", "5")), &f))
	require.Len(t, f.Hobbies, 1)
	require.Empty(t, f.Events)

	var nearby []models.Event
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("events", "nearby", "--lat", "52.52", "--lng", "13.40")), &nearby))
	require.Empty(t, nearby)

	_, err := c.run("events", "list", "--from", "tomorrow")
	require.Error(t, err)
}
