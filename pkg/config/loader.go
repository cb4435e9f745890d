package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// defaultTemplate is written to the default config path when no file exists
// yet. All values are commented out so the built-in defaults stay in effect.
const defaultTemplate = `# codex-chat-bridge runtime configuration
#
# Priority: CLI flags > config file > built-in defaults

# host: "127.0.0.1"
# port: 8787
# upstream_url: "https://api.openai.com/v1/chat/completions"
# upstream_wire: "chat" # chat | responses
# api_key_env: "OPENAI_API_KEY"
# server_info: "/tmp/codex-chat-bridge-info.json"
# http_shutdown: false
# verbose_logging: false
# drop_tool_types: ["web_search", "web_search_preview"]
`

// DefaultPath returns the default config file location,
// $HOME/.config/codex-chat-bridge/conf.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "codex-chat-bridge", "conf.yaml"), nil
}

// EnsureDefaultFile materializes the commented default config file at path
// when nothing exists there yet.
func EnsureDefaultFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(defaultTemplate), 0o644); err != nil {
		return fmt.Errorf("creating default config file %s: %w", path, err)
	}
	slog.Info("created default config file", "path", path)
	return nil
}

// LoadFile reads and parses the YAML config file at path. A missing file is
// not an error; it returns nil so the caller falls back to defaults.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	slog.Info("loaded config file", "path", path)
	return &f, nil
}
