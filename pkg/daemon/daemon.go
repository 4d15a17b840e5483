// Package daemon implements the template bridge daemon, a stand-in host for
// development and diagnostics.
//
// The daemon listens on a unix socket and speaks the protocol of the host
// package. Configurations pushed by applications are recorded in the store,
// forming a replayable history per owner; fire events submitted by any
// client (for example a test driver) are relayed to all other clients, which
// lets an application's callbacks be exercised without a native host.
package daemon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"src.tmb.sh/pkg/logutil"
	"src.tmb.sh/pkg/prog"
)

var logger = logutil.GetLogger("[daemon] ")

// Config is the daemon's configuration file, in YAML.
type Config struct {
	// Path to the unix socket to listen on.
	Sock string `yaml:"sock"`
	// Path to the database file.
	DB string `yaml:"db"`
}

// LoadConfig reads a Config from the named file. An empty path yields a zero
// Config.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Program is the daemon subprogram.
type Program struct {
	// Used in tests.
	serveOpts ServeOpts
}

func (p *Program) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	if len(args) > 0 {
		return prog.BadUsage("arguments are not allowed")
	}
	cfg, err := LoadConfig(f.Config)
	if err != nil {
		return err
	}
	if f.Sock != "" {
		cfg.Sock = f.Sock
	}
	if f.DB != "" {
		cfg.DB = f.DB
	}
	if cfg.Sock == "" || cfg.DB == "" {
		return prog.BadUsage(
			"both -sock and -db are required, either as flags or in the configuration file")
	}
	setUmaskForDaemon()
	return prog.Exit(Serve(cfg.Sock, cfg.DB, p.serveOpts))
}
