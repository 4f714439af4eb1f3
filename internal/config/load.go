package config

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/specialistvlad/socketgrid/internal/ctxlog"
	"github.com/specialistvlad/socketgrid/internal/fsutil"
)

// EnvPrefix prefixes every environment variable the service reads.
const EnvPrefix = "SOCKETGRID_"

// Load builds a Config from defaults, the HCL configuration at path and the
// environment. path may be a file or a directory of *.hcl files, merged in
// lexical order; an empty path skips this step. It does not validate the
// result.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := ctxlog.FromContext(ctx)
	cfg := Defaults()

	if path != "" {
		files, err := fsutil.ConfigFiles(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("failed to find config files: %w", err)
		}
		for _, file := range files {
			logger.Debug("Loading configuration file.", "path", file)
			if err := hclsimple.DecodeFile(file, nil, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", file, err)
			}
		}
	}

	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}

	logger.Debug("Configuration loaded.", "listen_addr", cfg.ListenAddr, "socket_path", cfg.SocketPath)
	return cfg, nil
}

// ParseEnv overlays SOCKETGRID_* environment variables onto target.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
