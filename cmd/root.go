package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/augustcaio/portfolio-gateway/pkg/config"
	"github.com/augustcaio/portfolio-gateway/pkg/version"
)

var (
	configPath string
	token      string
	login      string

	rootCmd = &cobra.Command{
		Use:           "portfolio-gateway",
		Short:         "GitHub data gateway for the portfolio site",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "GitHub token (overrides GITHUB_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&login, "login", "", "GitHub account to read (overrides github.login)")

	rootCmd.AddCommand(serveCmd, fetchCmd, cacheCmd, configCmd)
}

// loadConfig reads .env, the config file and the environment, then applies flag overrides.
func loadConfig() (*config.Config, error) {
	// A missing .env is fine
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if token != "" {
		cfg.GitHub.Token = token
	}
	if login != "" {
		cfg.GitHub.Login = login
	}
	return cfg, nil
}
