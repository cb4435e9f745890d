// Package config resolves the bridge's runtime configuration.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (default: ~/.config/codex-chat-bridge/conf.yaml,
//     materialized with a commented template when absent)
//  3. CLI flag overrides
//
// The drop-tool-type list is the union of file and flag values.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rhuss/codex-chat-bridge/pkg/api"
)

// Defaults applied when neither the config file nor the flags set a value.
const (
	DefaultHost      = "127.0.0.1"
	DefaultAPIKeyEnv = "OPENAI_API_KEY"
)

// File mirrors the YAML config file. All fields are optional; nil means
// "not set" so flag and default layering can tell absence from zero values.
type File struct {
	Host           *string  `yaml:"host"`
	Port           *int     `yaml:"port"`
	UpstreamURL    *string  `yaml:"upstream_url"`
	UpstreamWire   *string  `yaml:"upstream_wire"`
	APIKeyEnv      *string  `yaml:"api_key_env"`
	ServerInfo     *string  `yaml:"server_info"`
	HTTPShutdown   *bool    `yaml:"http_shutdown"`
	VerboseLogging *bool    `yaml:"verbose_logging"`
	DropToolTypes  []string `yaml:"drop_tool_types"`
}

// Flags carries the CLI flag values. Pointer fields are nil when the flag
// was not given on the command line.
type Flags struct {
	Host           *string
	Port           *int
	UpstreamURL    *string
	UpstreamWire   *string
	APIKeyEnv      *string
	ServerInfo     *string
	HTTPShutdown   bool
	VerboseLogging bool
	DropToolTypes  []string
}

// Resolved is the effective configuration handed to the rest of the bridge.
type Resolved struct {
	Host           string
	Port           int // 0 = OS-assigned
	UpstreamURL    string
	UpstreamWire   api.WireAPI
	APIKeyEnv      string
	ServerInfo     string // empty = no server-info file
	HTTPShutdown   bool
	VerboseLogging bool
	DropToolTypes  []string
}

// Resolve layers flags over the file config over built-in defaults.
// The file may be nil (no config file present).
func Resolve(flags Flags, file *File) (Resolved, error) {
	if file == nil {
		file = &File{}
	}

	wireName := layerString(flags.UpstreamWire, file.UpstreamWire, string(api.WireChat))
	wire, err := api.ParseWireAPI(wireName)
	if err != nil {
		return Resolved{}, fmt.Errorf("upstream_wire: %w", err)
	}

	dropToolTypes := make([]string, 0, len(file.DropToolTypes)+len(flags.DropToolTypes))
	for _, t := range append(append([]string{}, file.DropToolTypes...), flags.DropToolTypes...) {
		if strings.TrimSpace(t) != "" {
			dropToolTypes = append(dropToolTypes, t)
		}
	}

	return Resolved{
		Host:           layerString(flags.Host, file.Host, DefaultHost),
		Port:           layerInt(flags.Port, file.Port, 0),
		UpstreamURL:    layerString(flags.UpstreamURL, file.UpstreamURL, DefaultUpstreamURL(wire)),
		UpstreamWire:   wire,
		APIKeyEnv:      layerString(flags.APIKeyEnv, file.APIKeyEnv, DefaultAPIKeyEnv),
		ServerInfo:     layerString(flags.ServerInfo, file.ServerInfo, ""),
		HTTPShutdown:   flags.HTTPShutdown || boolOr(file.HTTPShutdown),
		VerboseLogging: flags.VerboseLogging || boolOr(file.VerboseLogging),
		DropToolTypes:  dropToolTypes,
	}, nil
}

// DefaultUpstreamURL returns the OpenAI endpoint for the given wire API.
func DefaultUpstreamURL(wire api.WireAPI) string {
	if wire == api.WireResponses {
		return "https://api.openai.com/v1/responses"
	}
	return "https://api.openai.com/v1/chat/completions"
}

// APIKey reads the bearer token from the environment variable named by
// APIKeyEnv. A missing or blank value is a fatal startup error.
func (r Resolved) APIKey() (string, error) {
	v := os.Getenv(r.APIKeyEnv)
	if strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("missing or empty env var: %s", r.APIKeyEnv)
	}
	return v, nil
}

// DropSet returns the drop-tool-type list as a lookup set.
func (r Resolved) DropSet() map[string]bool {
	set := make(map[string]bool, len(r.DropToolTypes))
	for _, t := range r.DropToolTypes {
		set[t] = true
	}
	return set
}

func layerString(flag *string, file *string, def string) string {
	if flag != nil {
		return *flag
	}
	if file != nil {
		return *file
	}
	return def
}

func layerInt(flag *int, file *int, def int) int {
	if flag != nil {
		return *flag
	}
	if file != nil {
		return *file
	}
	return def
}

func boolOr(v *bool) bool {
	return v != nil && *v
}
