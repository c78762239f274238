package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"
)

const configFileName = "slumber.toml"

// fileConfig is the contents of a slumber.toml file.
type fileConfig struct {
	Run     runConfig    `toml:"run"`
	Modules moduleConfig `toml:"modules"`
	Log     logConfig    `toml:"log"`

	// Dir is the directory holding the file, set at load time.
	Dir string `toml:"-"`
}

type runConfig struct {
	StepQuota       int  `toml:"step-quota"`
	RecursionLimit  int  `toml:"recursion-limit"`
	ApplyDecorators bool `toml:"apply-decorators"`
}

type moduleConfig struct {
	Paths []string `toml:"paths"`
}

type logConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

func loadConfig(dir string) (*fileConfig, error) {
	path := filepath.Join(dir, configFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var cfg fileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	cfg.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return &cfg, nil
}

// findConfig walks up from startDir looking for slumber.toml. A missing
// file yields an empty config rooted at startDir.
func findConfig(startDir string) (*fileConfig, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for cur := dir; ; {
		if _, err := os.Stat(filepath.Join(cur, configFileName)); err == nil {
			return loadConfig(cur)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return &fileConfig{Dir: dir}, nil
		}
		cur = parent
	}
}

// modulePaths resolves the configured module directories against the
// directory holding the config file.
func (c *fileConfig) modulePaths() []string {
	paths := make([]string, 0, len(c.Modules.Paths))
	for _, p := range c.Modules.Paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(c.Dir, p)
		}
		paths = append(paths, p)
	}
	return paths
}

// configureLogging installs the simple commonlog backend. Verbosity 0
// keeps only errors; each -v raises the level.
func configureLogging(verbosity int, file string) {
	var path *string
	if file != "" {
		path = &file
	}
	commonlog.Configure(verbosity, path)
}
