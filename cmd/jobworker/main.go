package main

import (
	"fmt"
	"os"

	"github.com/jobworker/engine/internal/common"
	"github.com/ternarybob/arbor"
)

// configPaths is a custom flag type that allows multiple -config flags.
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	config *common.Config
	logger arbor.ILogger
)

func main() {
	if len(os.Args) < 2 {
		runServe(os.Args[1:])
		return
	}

	switch os.Args[1] {
	case "submit":
		runSubmit(os.Args[2:])
	case "version", "-version", "-v", "--version":
		printVersion()
	case "serve":
		runServe(os.Args[2:])
	default:
		runServe(os.Args[1:])
	}
}

// loadConfig runs the shared config load -> validate -> logger setup
// sequence every subcommand needs: defaults -> files -> env -> validate -> logger.
func loadConfig(files configPaths) (*common.Config, arbor.ILogger, error) {
	if len(files) == 0 {
		if _, err := os.Stat("jobworker.toml"); err == nil {
			files = append(files, "jobworker.toml")
		} else if _, err := os.Stat("deployments/local/jobworker.toml"); err == nil {
			files = append(files, "deployments/local/jobworker.toml")
		}
	}

	cfg := common.NewDefaultConfig()
	if err := cfg.LoadFromFiles(files); err != nil {
		return nil, nil, err
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log := common.SetupLogger(cfg)
	return cfg, log, nil
}

func printVersion() {
	fmt.Printf("jobworker version %s\n", common.LoadVersionFromFile())
}
