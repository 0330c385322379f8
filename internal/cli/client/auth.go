package client

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// AuthCmd creates the auth parent command
func AuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage server URL and API key",
		Long:  "Store, clear and inspect the server URL and API key used by the shopmate CLI",
	}

	cmd.AddCommand(AuthLoginCmd())
	cmd.AddCommand(AuthLogoutCmd())
	cmd.AddCommand(AuthStatusCmd())

	return cmd
}

// AuthLoginCmd creates the auth login command
func AuthLoginCmd() *cobra.Command {
	var apiKey string
	var apiURL string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save server URL and API key",
		Long:  "Store the API URL and optional API key in the global config (~/.config/shopmate/config.json)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogin(cmd.OutOrStdout(), apiKey, apiURL)
		},
	}

	cmd.Flags().StringVar(&apiKey, "key", "", "API key for write endpoints")
	cmd.Flags().StringVar(&apiURL, "url", defaultAPIURL, "API URL")

	return cmd
}

// AuthLogoutCmd creates the auth logout command
func AuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear saved settings",
		Long:  "Remove stored settings from global config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := DeleteGlobalConfig(); err != nil {
				return fmt.Errorf("failed to logout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Settings cleared")
			return nil
		},
	}
}

// AuthStatusCmd creates the auth status command
func AuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the CLI connects",
		Long:  "Display the resolved API URL, its source and whether an API key is set",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			flagKey, _ := cmd.Flags().GetString("api-key")
			flagURL, _ := cmd.Flags().GetString("api-url")
			source, apiKey, apiURL := GetCredentialSource(flagKey, flagURL)
			return writeStatus(cmd.OutOrStdout(), source, apiKey, apiURL, outputJSON)
		},
	}
}

func runAuthLogin(w io.Writer, apiKey, apiURL string) error {
	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if !strings.HasPrefix(apiURL, "http://") && !strings.HasPrefix(apiURL, "https://") {
		return fmt.Errorf("invalid API URL %q (expected http:// or https://)", apiURL)
	}

	config := &GlobalConfig{
		APIKey: strings.TrimSpace(apiKey),
		APIURL: apiURL,
	}

	if err := SaveGlobalConfig(config); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	fmt.Fprintln(w, "Settings saved")
	return nil
}

func writeStatus(w io.Writer, source CredentialSource, apiKey, apiURL string, outputJSON bool) error {
	if outputJSON {
		status := map[string]interface{}{
			"source":  string(source),
			"api_url": apiURL,
			"api_key": maskAPIKey(apiKey),
		}
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	fmt.Fprintf(w, "Source: %s\n", source)
	fmt.Fprintf(w, "API URL: %s\n", apiURL)
	fmt.Fprintf(w, "API Key: %s\n", maskAPIKey(apiKey))
	return nil
}

func maskAPIKey(key string) string {
	if key == "" {
		return "(none)"
	}
	if len(key) < 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
