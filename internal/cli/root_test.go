package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
	"github.com/feedbackhub/feedback-client/internal/core/ports"
	"github.com/feedbackhub/feedback-client/internal/core/service"
	"github.com/feedbackhub/feedback-client/internal/devbackend"
	"github.com/feedbackhub/feedback-client/internal/pkg/config"
)

func testConfig(t *testing.T, apiURL string) *config.Config {
	t.Helper()
	return &config.Config{
		APIURL:   apiURL,
		LogLevel: "error",
		Token: config.TokenConfig{
			Store: config.StoreFile,
			File:  filepath.Join(t.TempDir(), "session.json"),
		},
		Poll: config.PollConfig{Notifications: time.Second, Requests: time.Second},
	}
}

func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd(cfg)
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func newBackend(t *testing.T) string {
	t.Helper()
	srv, err := devbackend.New(devbackend.Config{JWTSecret: "cli-test", Seed: true}, zerolog.Nop())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func findCmd(root *cobra.Command, path ...string) *cobra.Command {
	cmd, _, err := root.Find(path)
	if err != nil || cmd == root {
		return nil
	}
	return cmd
}

func TestRootSubcommands(t *testing.T) {
	root := NewRootCmd(&config.Config{})
	for _, name := range []string{"login", "logout", "whoami", "register", "delete-account", "feedback", "notifications", "serve", "dev-backend"} {
		assert.NotNil(t, findCmd(root, name), "subcommand %q not registered", name)
	}
	for _, name := range []string{"list", "show", "edit", "ack", "unack", "comment", "comment-edit", "comment-delete", "tags", "stats", "managers", "request"} {
		assert.NotNil(t, findCmd(root, "feedback", name), "feedback subcommand %q not registered", name)
	}
	for _, name := range []string{"read", "read-all"} {
		assert.NotNil(t, findCmd(root, "notifications", name), "notifications subcommand %q not registered", name)
	}
}

func TestCommandFlags(t *testing.T) {
	root := NewRootCmd(&config.Config{})
	tests := []struct {
		path  []string
		flags []string
	}{
		{[]string{"login"}, []string{"username", "password"}},
		{[]string{"register"}, []string{"name", "username", "email", "password", "role"}},
		{[]string{"feedback", "list"}, []string{"tab", "sentiment", "employee", "search", "tag"}},
		{[]string{"feedback", "edit"}, []string{"strengths", "improvements", "sentiment", "tag"}},
		{[]string{"delete-account"}, []string{"yes"}},
		{[]string{"notifications"}, []string{"watch", "interval"}},
		{[]string{"serve"}, []string{"addr", "shutdown-timeout"}},
		{[]string{"dev-backend"}, []string{"addr", "token-ttl", "no-seed"}},
	}
	for _, tt := range tests {
		cmd := findCmd(root, tt.path...)
		require.NotNil(t, cmd, tt.path)
		for _, f := range tt.flags {
			assert.NotNil(t, cmd.Flags().Lookup(f), "flag %q missing on %v", f, tt.path)
		}
	}
	for _, f := range []string{"api-url", "token-store", "log-level", "output"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(f), "persistent flag %q missing", f)
	}
}

func TestOutputFormatIsValidated(t *testing.T) {
	_, err := run(t, testConfig(t, "http://127.0.0.1:1"), "whoami", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output")
}

func TestMissingBaseURLIsReported(t *testing.T) {
	_, err := run(t, testConfig(t, ""), "whoami")
	require.ErrorIs(t, err, domain.ErrMissingBaseURL)
	assert.Contains(t, err.Error(), "FEEDBACK_API_URL")
}

func TestLoginWhoamiLogout(t *testing.T) {
	cfg := testConfig(t, newBackend(t))

	stdout, err := run(t, cfg, "login", "-u", "amy", "-p", devbackend.SeedPassword)
	require.NoError(t, err)
	assert.Contains(t, stdout, "amy (manager)")

	stdout, err = run(t, cfg, "whoami", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"username": "amy"`)

	stdout, err = run(t, cfg, "feedback", "list", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "strengths:")

	stdout, err = run(t, cfg, "logout")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Logged out")

	_, err = run(t, cfg, "whoami")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestLoginFailureShowsReason(t *testing.T) {
	cfg := testConfig(t, newBackend(t))

	_, err := run(t, cfg, "login", "-u", "amy", "-p", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestRegisterDoesNotLogIn(t *testing.T) {
	cfg := testConfig(t, newBackend(t))

	stdout, err := run(t, cfg, "register", "--name", "Dana Lee", "-u", "dana",
		"--email", "dana@example.com", "-p", "secret", "--role", "employee")
	require.NoError(t, err)
	assert.Contains(t, stdout, "dana")

	_, err = run(t, cfg, "whoami")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	_, err = run(t, cfg, "login", "-u", "dana", "-p", "secret")
	require.NoError(t, err)
}

func TestEmployeeAcknowledgesAndComments(t *testing.T) {
	cfg := testConfig(t, newBackend(t))

	_, err := run(t, cfg, "login", "-u", "bob", "-p", devbackend.SeedPassword)
	require.NoError(t, err)

	stdout, err := run(t, cfg, "feedback", "list", "--tab", "pending", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"acknowledged": false`)

	stdout, err = run(t, cfg, "feedback", "ack", "1", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"acknowledged": true`)

	stdout, err = run(t, cfg, "feedback", "comment", "1", "thanks,", "noted", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"comment": "thanks, noted"`)

	stdout, err = run(t, cfg, "notifications", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "unread: 1")
}

func TestManagerShowsAndEditsFeedback(t *testing.T) {
	cfg := testConfig(t, newBackend(t))

	_, err := run(t, cfg, "login", "-u", "amy", "-p", devbackend.SeedPassword)
	require.NoError(t, err)

	stdout, err := run(t, cfg, "feedback", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Ships reliably")
	assert.Contains(t, stdout, "delivery, communication")

	stdout, err = run(t, cfg, "feedback", "edit", "1", "--sentiment", "neutral", "--tag", "growth", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"sentiment": "neutral"`)
	assert.Contains(t, stdout, `"name": "growth"`)

	_, err = run(t, cfg, "feedback", "edit", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to change")

	stdout, err = run(t, cfg, "feedback", "list", "--tag", "growth")
	require.NoError(t, err)
	assert.Contains(t, stdout, "#1 ")
	assert.NotContains(t, stdout, "#2 ")

	stdout, err = run(t, cfg, "feedback", "tags")
	require.NoError(t, err)
	assert.Contains(t, stdout, "growth")
}

func TestEmployeeEditsAndDeletesComment(t *testing.T) {
	cfg := testConfig(t, newBackend(t))

	_, err := run(t, cfg, "login", "-u", "bob", "-p", devbackend.SeedPassword)
	require.NoError(t, err)

	_, err = run(t, cfg, "feedback", "edit", "1", "--sentiment", "negative")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = run(t, cfg, "feedback", "comment", "1", "first")
	require.NoError(t, err)
	stdout, err := run(t, cfg, "feedback", "comment-edit", "1", "second", "draft", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"comment": "second draft"`)

	stdout, err = run(t, cfg, "feedback", "comment-delete", "1", "-o", "json")
	require.NoError(t, err)
	assert.NotContains(t, stdout, `"comment": "second draft"`)

	stdout, err = run(t, cfg, "feedback", "managers")
	require.NoError(t, err)
	assert.Contains(t, stdout, "amy")
}

func TestDeleteAccount(t *testing.T) {
	cfg := testConfig(t, newBackend(t))
	prev := interactive
	interactive = func() bool { return false }
	t.Cleanup(func() { interactive = prev })

	_, err := run(t, cfg, "login", "-u", "carol", "-p", devbackend.SeedPassword)
	require.NoError(t, err)

	_, err = run(t, cfg, "delete-account")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	stdout, err := run(t, cfg, "delete-account", "--yes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Deleted account carol")

	_, err = run(t, cfg, "whoami")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	_, err = run(t, cfg, "login", "-u", "carol", "-p", devbackend.SeedPassword)
	assert.Error(t, err)
}

func TestParseFilter(t *testing.T) {
	f, err := parseFilter("acknowledged", "negative", 3, "late", []string{"delivery"})
	require.NoError(t, err)
	assert.Equal(t, service.Filter{
		Tab:        service.TabAcknowledged,
		Sentiment:  domain.SentimentNegative,
		EmployeeID: 3,
		Search:     "late",
		Tags:       []string{"delivery"},
	}, f)

	_, err = parseFilter("archived", "", 0, "", nil)
	assert.Error(t, err)
	_, err = parseFilter("", "ecstatic", 0, "", nil)
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "x", "0", "-1"} {
		_, err := parseID(raw)
		assert.Error(t, err, raw)
	}
}

func TestRedisTokenStoreUsesDefaultKey(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Token.Store = config.StoreRedis
	cfg.Redis.Addr = mr.Addr()

	a := &app{cfg: cfg, log: zerolog.Nop()}
	defer a.close()
	store, err := a.openTokenStore(context.Background())
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), "tok-amy"))
	got, err := mr.Get(ports.DefaultTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tok-amy", got)

	cfg.Token.Key = "team:laptop"
	other, err := a.openTokenStore(context.Background())
	require.NoError(t, err)
	require.NoError(t, other.Save(context.Background(), "tok-bob"))
	got, err = mr.Get("team:laptop")
	require.NoError(t, err)
	assert.Equal(t, "tok-bob", got)
}
