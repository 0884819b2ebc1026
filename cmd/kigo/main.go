package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kigopro/kigo/internal/client"
	"github.com/kigopro/kigo/internal/ui"
)

var (
	serverAddr string
	transport  string
	authToken  string
	jsonOutput bool
	actor      string

	kigoClient client.Client
)

func defaultActor() string {
	out, err := exec.Command("git", "config", "user.name").Output()
	if err == nil {
		name := strings.TrimSpace(string(out))
		if name != "" {
			return name
		}
	}
	return "unknown"
}

// resolveServer picks the server address: the --server flag, then
// KIGO_SERVER, then the active remote, then the transport's local default.
func resolveServer(flag, transport string) string {
	if flag != "" {
		return flag
	}
	if s := os.Getenv("KIGO_SERVER"); s != "" {
		return s
	}
	if u := activeRemoteURL(); u != "" {
		return u
	}
	if transport == "grpc" {
		return "localhost:9090"
	}
	return "http://localhost:8080"
}

func resolveToken(flag string) string {
	if flag != "" {
		return flag
	}
	if t := os.Getenv("KIGO_TOKEN"); t != "" {
		return t
	}
	return activeRemoteToken()
}

// noClient skips connecting for commands that work locally.
func noClient(*cobra.Command, []string) error { return nil }

var rootCmd = &cobra.Command{
	Use:           "kigo <command>",
	Short:         "Browse and manage Kigo Pro tokens, ads and campaigns",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("transport") && serverAddr == "" {
			if tr := activeRemoteTransport(); tr != "" {
				transport = tr
			}
		}
		serverAddr = resolveServer(serverAddr, transport)
		token := resolveToken(authToken)
		switch transport {
		case "http":
			kigoClient = client.NewHTTPClient(serverAddr, token)
		case "grpc":
			c, err := client.NewGRPCClient(serverAddr, token)
			if err != nil {
				return fmt.Errorf("failed to connect to server: %w", err)
			}
			kigoClient = c
		default:
			return fmt.Errorf("unknown transport %q (must be http or grpc)", transport)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if kigoClient != nil {
			kigoClient.Close()
		}
	},
}

// httpClient returns the HTTP client for commands the gRPC service does
// not cover.
func httpClient() (*client.HTTPClient, error) {
	c, ok := kigoClient.(*client.HTTPClient)
	if !ok {
		return nil, fmt.Errorf("this command requires --transport http")
	}
	return c, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "", "server address (default: $KIGO_SERVER, active remote, or localhost)")
	rootCmd.PersistentFlags().StringVar(&transport, "transport", "http", "transport protocol (http or grpc)")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "bearer token (default: $KIGO_TOKEN or the active remote's token)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", defaultActor(), "actor name recorded on changes")

	rootCmd.AddGroup(
		&cobra.Group{ID: "tokens", Title: "Tokens and customers:"},
		&cobra.Group{ID: "campaigns", Title: "Ads and campaigns:"},
		&cobra.Group{ID: "views", Title: "Views:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Tokens and customers
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(customersCmd)

	// Ads and campaigns
	rootCmd.AddCommand(adsCmd)
	rootCmd.AddCommand(adGroupsCmd)
	rootCmd.AddCommand(campaignsCmd)
	rootCmd.AddCommand(assistantCmd)

	// Views
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(watchCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if !ui.ShouldUseColor() {
		ui.ForceNoColor()
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
