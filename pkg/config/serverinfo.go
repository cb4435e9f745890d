package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ServerInfo is the one-line JSON descriptor of the bound listener, written
// at startup so wrappers can discover an OS-assigned port.
type ServerInfo struct {
	Port int `json:"port"`
	PID  int `json:"pid"`
}

// WriteServerInfo writes {"port":N,"pid":N} plus a trailing newline to path,
// creating parent directories as needed.
func WriteServerInfo(path string, port int) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating server-info directory %s: %w", dir, err)
		}
	}

	data, err := json.Marshal(ServerInfo{Port: port, PID: os.Getpid()})
	if err != nil {
		return fmt.Errorf("marshaling server info: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing server info %s: %w", path, err)
	}
	return nil
}
