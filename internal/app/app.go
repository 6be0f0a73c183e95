// Package app assembles the configured components shared by the CLI
// commands: configuration, logger, pipeline runner and publisher.
package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/OftenOfuton/My-AZIK/internal/config"
	"github.com/OftenOfuton/My-AZIK/internal/logging"
	"github.com/OftenOfuton/My-AZIK/internal/pipeline"
	"github.com/OftenOfuton/My-AZIK/internal/publish"
)

// App is the loaded state of one invocation.
type App struct {
	Config  *config.Config
	Viper   *viper.Viper
	Logger  zerolog.Logger
	Verbose bool
	NoColor bool
	JSON    bool
}

// Provider returns the App loaded by the root command.
type Provider func() *App

// Load merges v into a Config and builds the logger.
func Load(v *viper.Viper, verbose, noColor bool) (*App, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	logger := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Verbose: verbose,
		NoColor: noColor,
	})
	if path := v.ConfigFileUsed(); path != "" {
		logger.Debug().Str("file", path).Msg("config loaded")
	}
	return &App{
		Config:  cfg,
		Viper:   v,
		Logger:  logger,
		Verbose: verbose,
		NoColor: noColor,
	}, nil
}

// ConfigFile returns the config file in use, or the user config path when
// none was found.
func (a *App) ConfigFile() string {
	if a.Viper != nil {
		if path := a.Viper.ConfigFileUsed(); path != "" {
			return path
		}
	}
	return config.UserConfigPath()
}

// PipelineOptions validates the configuration and converts it to run options.
func (a *App) PipelineOptions() (pipeline.Options, error) {
	cfg := a.Config
	if err := config.Err(cfg.Validate()); err != nil {
		return pipeline.Options{}, fmt.Errorf("invalid configuration: %w", err)
	}
	policy, err := cfg.Policy()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Workbook:      cfg.Excel,
		Output:        cfg.Output,
		BackupDir:     cfg.BackupDir,
		Table:         cfg.Table,
		Columns:       cfg.Columns,
		Policy:        policy,
		Publish:       cfg.Publish.Enabled,
		CommitMessage: cfg.Publish.Message,
	}, nil
}

// Publisher returns a git publisher for the repository holding the output file.
func (a *App) Publisher() *publish.Publisher {
	cfg := a.Config
	// git runs at the top of the working tree so every pending change is staged.
	dir := "."
	if root, err := publish.Root(filepath.Dir(cfg.Output)); err == nil {
		dir = root
	}
	p := publish.New(dir, logging.Component(a.Logger, "publish"))
	p.Remote = cfg.Publish.Remote
	p.Branch = cfg.Publish.Branch
	p.SkipClean = cfg.Publish.SkipClean
	return p
}

// Runner returns a pipeline runner that prints progress to out.
func (a *App) Runner(out io.Writer) *pipeline.Runner {
	var pub pipeline.Publisher
	if a.Config.Publish.Enabled {
		pub = a.Publisher()
	}
	r := pipeline.NewRunner(a.Logger, pub)
	if out == nil {
		out = os.Stdout
	}
	r.Out = out
	return r
}
