// Command bridge runs the codex-chat-bridge proxy.
//
// The bridge accepts requests on both the Responses and Chat Completions
// wire APIs, transcodes them toward the configured upstream schema, and
// translates streaming or unary answers back into the caller's schema.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rhuss/codex-chat-bridge/pkg/config"
	"github.com/rhuss/codex-chat-bridge/pkg/proxy"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error("bridge failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath    string
		host          string
		port          int
		upstreamURL   string
		upstreamWire  string
		apiKeyEnv     string
		serverInfo    string
		httpShutdown  bool
		verbose       bool
		dropToolTypes []string
	)

	cmd := &cobra.Command{
		Use:          "codex-chat-bridge",
		Short:        "Proxy between the Responses and Chat Completions wire APIs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Pointer fields stay nil unless the flag was given, so file
			// values and defaults can fill the gaps.
			flags := config.Flags{
				HTTPShutdown:   httpShutdown,
				VerboseLogging: verbose,
				DropToolTypes:  dropToolTypes,
			}
			if cmd.Flags().Changed("host") {
				flags.Host = &host
			}
			if cmd.Flags().Changed("port") {
				flags.Port = &port
			}
			if cmd.Flags().Changed("upstream-url") {
				flags.UpstreamURL = &upstreamURL
			}
			if cmd.Flags().Changed("upstream-wire") {
				flags.UpstreamWire = &upstreamWire
			}
			if cmd.Flags().Changed("api-key-env") {
				flags.APIKeyEnv = &apiKeyEnv
			}
			if cmd.Flags().Changed("server-info") {
				flags.ServerInfo = &serverInfo
			}
			return runBridge(configPath, flags)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "config file (default: ~/.config/codex-chat-bridge/conf.yaml)")
	flags.StringVar(&host, "host", "", "listen host")
	flags.IntVar(&port, "port", 0, "listen port (0 picks a free port)")
	flags.StringVar(&upstreamURL, "upstream-url", "", "upstream endpoint URL")
	flags.StringVar(&upstreamWire, "upstream-wire", "", "upstream wire API: chat or responses")
	flags.StringVar(&apiKeyEnv, "api-key-env", "", "env var holding the upstream API key")
	flags.StringVar(&serverInfo, "server-info", "", "file to write the bound port and pid to")
	flags.BoolVar(&httpShutdown, "http-shutdown", false, "enable the GET /shutdown endpoint")
	flags.BoolVar(&verbose, "verbose-logging", false, "log request and upstream payloads")
	flags.StringArrayVar(&dropToolTypes, "drop-tool-type", nil, "tool type to strip from incoming requests (repeatable)")

	return cmd
}

func runBridge(configPath string, flags config.Flags) error {
	// A .env file in the working directory may provide the API key.
	godotenv.Load()

	if configPath == "" {
		path, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolving config path: %w", err)
		}
		if err := config.EnsureDefaultFile(path); err != nil {
			return fmt.Errorf("materializing default config: %w", err)
		}
		configPath = path
	}

	file, err := config.LoadFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config %s: %w", configPath, err)
	}

	resolved, err := config.Resolve(flags, file)
	if err != nil {
		return err
	}

	apiKey, err := resolved.APIKey()
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if resolved.VerboseLogging {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Info("bridge configured",
		slog.String("upstream_url", resolved.UpstreamURL),
		slog.String("upstream_wire", string(resolved.UpstreamWire)),
		slog.String("api_key_env", resolved.APIKeyEnv))

	p := proxy.New(proxy.Config{
		UpstreamURL:   resolved.UpstreamURL,
		UpstreamWire:  resolved.UpstreamWire,
		APIKey:        apiKey,
		HTTPShutdown:  resolved.HTTPShutdown,
		Verbose:       resolved.VerboseLogging,
		DropToolTypes: resolved.DropSet(),
		Logger:        logger,
	})

	srv := proxy.NewServer(p, proxy.ServerConfig{
		Host:           resolved.Host,
		Port:           resolved.Port,
		ServerInfoPath: resolved.ServerInfo,
		Logger:         logger,
	})
	return srv.ListenAndServe()
}
