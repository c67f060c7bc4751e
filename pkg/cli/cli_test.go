package cli_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/relwatch/pkg/cli"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

type testEnv struct {
	configPath    string
	versionPath   string
	webhookURL    string
	notifications *atomic.Int32
	tag           *atomic.Value
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, key := range []string{"DISCORD_WEBHOOK_URL", "INPUT_DISCORD_WEBHOOK_URL", "RELWATCH_GITHUB_TOKEN", "GITHUB_TOKEN", "CONFIG_PATH"} {
		t.Setenv(key, "")
	}
	t.Setenv("GITHUB_ACTIONS", "false")

	env := &testEnv{
		notifications: &atomic.Int32{},
		tag:           &atomic.Value{},
	}
	env.tag.Store("v4.0.0")

	github := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/test/repo/releases/latest" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"tag_name": env.tag.Load().(string)})
	}))
	t.Cleanup(github.Close)

	discord := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.notifications.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(discord.Close)
	env.webhookURL = discord.URL

	dir := t.TempDir()
	env.versionPath = filepath.Join(dir, "last_version.json")
	env.configPath = filepath.Join(dir, "config.yaml")

	content := "github:\n" +
		"  repository: test/repo\n" +
		"  name: Test Repo\n" +
		"  api:\n" +
		"    base_url: " + github.URL + "\n" +
		"    retries: 0\n" +
		"storage:\n" +
		"  version_file: " + env.versionPath + "\n"
	gt.NoError(t, os.WriteFile(env.configPath, []byte(content), 0600))

	return env
}

func TestRun_Check(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	args := []string{"relwatch", "check", "--config", env.configPath, "--webhook-url", env.webhookURL}

	gt.NoError(t, cli.Run(ctx, args))
	gt.Equal(t, env.notifications.Load(), int32(1))

	raw, err := os.ReadFile(env.versionPath)
	gt.NoError(t, err)
	gt.String(t, string(raw)).Contains(`"last_version": "v4.0.0"`)

	// Nothing changed upstream
	gt.NoError(t, cli.Run(ctx, args))
	gt.Equal(t, env.notifications.Load(), int32(1))

	// Out of pattern release is ignored
	env.tag.Store("v3.5.0")
	gt.NoError(t, cli.Run(ctx, args))
	gt.Equal(t, env.notifications.Load(), int32(1))

	env.tag.Store("v4.1.0")
	gt.NoError(t, cli.Run(ctx, args))
	gt.Equal(t, env.notifications.Load(), int32(2))

	gt.NoError(t, cli.Run(ctx, []string{"relwatch", "status", "--config", env.configPath}))
}

func TestRun_Check_WebhookFromEnv(t *testing.T) {
	env := setupEnv(t)
	t.Setenv("INPUT_DISCORD_WEBHOOK_URL", env.webhookURL)

	gt.NoError(t, cli.Run(context.Background(), []string{"relwatch", "check", "--config", env.configPath}))
	gt.Equal(t, env.notifications.Load(), int32(1))
}

func TestRun_Check_MissingWebhook(t *testing.T) {
	env := setupEnv(t)

	err := cli.Run(context.Background(), []string{"relwatch", "check", "--config", env.configPath})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, types.ErrMissingWebhookURL))
	gt.Equal(t, env.notifications.Load(), int32(0))

	_, statErr := os.Stat(env.versionPath)
	gt.True(t, os.IsNotExist(statErr))
}

func TestRun_Check_MissingConfig(t *testing.T) {
	env := setupEnv(t)

	err := cli.Run(context.Background(), []string{"relwatch", "check",
		"--config", filepath.Join(t.TempDir(), "nonexistent.yaml"),
		"--webhook-url", env.webhookURL,
	})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, types.ErrInvalidConfig))
}

func TestRun_InvalidLogLevel(t *testing.T) {
	env := setupEnv(t)

	err := cli.Run(context.Background(), []string{"relwatch", "--log-level", "verbose", "check",
		"--config", env.configPath, "--webhook-url", env.webhookURL})
	gt.Error(t, err)
	gt.Equal(t, env.notifications.Load(), int32(0))
}
