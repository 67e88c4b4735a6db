// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   map[string]string
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "llm-api-key", "  sk_abc123  \n")
				writeFile(t, dir, "notion-api-token", "ntn_xyz789")
				writeFile(t, dir, "wecom-webhook", "https://qyapi.weixin.qq.com/cgi-bin/webhook/send?key=k\n")
				return dir
			},
			want: map[string]string{
				"llm-api-key":      "sk_abc123",
				"notion-api-token": "ntn_xyz789",
				"wecom-webhook":    "https://qyapi.weixin.qq.com/cgi-bin/webhook/send?key=k",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "llm-api-key", "valid-key")
				writeFile(t, dir, "feishu-webhook", "")
				writeFile(t, dir, "wecom-webhook", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				"llm-api-key": "valid-key",
			},
		},
		{
			name: "skips unrecognized key names",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "llm-api-key", "sk_real")
				writeFile(t, dir, "lm-api-key", "sk_typo")
				writeFile(t, dir, "anthropic-api-key", "left over from another tool")
				return dir
			},
			want: map[string]string{
				"llm-api-key": "sk_real",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, "feishu-webhook", "https://open.feishu.cn/hook")
				return dir
			},
			want: map[string]string{
				"feishu-webhook": "https://open.feishu.cn/hook",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "llm-api-key", "ak_123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				"llm-api-key": "ak_123",
			},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "llm-api-key", "value123")

	// Create a file then remove read permission.
	badPath := filepath.Join(dir, "notion-api-token")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	// The good file should still be returned; the bad file is skipped with a warning.
	assert.Equal(t, "value123", got["llm-api-key"])
	_, hasBad := got["notion-api-token"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
