package main

import (
	"github.com/spf13/cobra"

	"taskflow/internal/config"
	"taskflow/internal/logger"
)

type rootFlags struct {
	configPath string
	logLevel   string
	logJSON    bool
}

func rootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "taskflow",
		Short:         "Task assignment API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", config.DefaultPath, "path to the YAML config file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides config")
	root.PersistentFlags().BoolVar(&flags.logJSON, "log-json", false, "emit JSON logs")

	root.AddCommand(
		serveCmd(flags),
		migrateCmd(flags),
		createAdminCmd(flags),
	)
	return root
}

// load reads the config and initialises the default logger from it.
func (f *rootFlags) load() (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logJSON {
		cfg.Log.JSON = true
	}
	logger.Init(logger.Config{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	return cfg, nil
}
