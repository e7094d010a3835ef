package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/fx"

	"convsync/internal/app"
	"convsync/internal/config"
)

func main() {
	configFlag := flag.String("config", "", "config file path (default ~/.convsync/config.toml)")
	dataDirFlag := flag.String("data-dir", "", "data directory (overrides config)")
	backendFlag := flag.String("backend", "", "backend base URL (overrides config)")
	onceFlag := flag.Bool("once", false, "run a single sync cycle and exit")
	flag.Parse()

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *dataDirFlag != "" {
		cfg.DataDir = *dataDirFlag
	}
	if *backendFlag != "" {
		cfg.BackendURL = *backendFlag
	}
	if cfg.BackendURL == "" {
		fmt.Fprintln(os.Stderr, "error: no backend URL configured (set backend_url or pass -backend)")
		os.Exit(1)
	}

	fx.New(
		app.Module(app.Params{Config: cfg, Once: *onceFlag}),
	).Run()
}

// loadConfig reads the config file, falling back to defaults when the
// default path does not exist. An explicit -config path must exist.
func loadConfig(path string) (*config.Config, error) {
	explicit := path != ""
	if !explicit {
		path = config.ConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}
