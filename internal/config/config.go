// Package config loads gqlbundle settings. Precedence, lowest first:
// defaults, gqlbundle.yaml, environment (GQLBUNDLE_*, optionally seeded from
// .env files), command-line flags.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"gqlbundle/internal/failure"
	"gqlbundle/internal/ident"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "gqlbundle.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GQLBUNDLE_"

// Bundler names.
const (
	BundlerEsbuild = "esbuild"
	BundlerInline  = "inline"
)

type Config struct {
	Schema         string            `yaml:"schema"`
	Queries        string            `yaml:"queries"`
	Out            string            `yaml:"out"`
	WorkDir        string            `yaml:"workDir"`
	Archive        string            `yaml:"archive"`
	Persisted      bool              `yaml:"persisted"`
	Flatten        bool              `yaml:"flatten"`
	Organizational []string          `yaml:"organizational"`
	Exclude        []string          `yaml:"exclude"`
	Gitignore      bool              `yaml:"gitignore"`
	Concurrency    int               `yaml:"concurrency"`
	Bundler        string            `yaml:"bundler"`
	Minify         bool              `yaml:"minify"`
	Scalars        map[string]string `yaml:"scalars"`
	Tools          Tools             `yaml:"tools"`
	Log            Log               `yaml:"log"`
}

// Tools are the command lines of the external collaborators.
type Tools struct {
	Codegen string `yaml:"codegen"`
	Tsc     string `yaml:"tsc"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Out:            "lib",
		Organizational: append([]string(nil), ident.DefaultOrganizational...),
		Bundler:        BundlerEsbuild,
		Tools:          Tools{Codegen: "apollo", Tsc: "tsc"},
		Log:            Log{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults. An empty path tries DefaultFile and
// silently falls back to defaults when it is absent; an explicit path must
// exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return Config{}, failure.Wrap(failure.Config, err, "read config").WithPath(path)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, failure.Wrap(failure.Config, err, "parse config").WithPath(path)
	}
	return cfg, nil
}

// LoadEnv seeds the process environment from .env files. Variables already
// set are kept.
func LoadEnv(logger logrus.FieldLogger, files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	loaded := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			if logger != nil {
				logger.WithError(err).Warnf("Failed to load %s", file)
			}
			continue
		}
		loaded = append(loaded, file)
	}
	if logger != nil && len(loaded) > 0 {
		logger.Debugf("Loaded env files: %s", strings.Join(loaded, ", "))
	}
}

// ApplyEnv overrides cfg from GQLBUNDLE_* variables read through getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	str := func(key string, dst *string) {
		if v := getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	var errs []string
	boolean := func(key string, dst *bool) {
		if v := getenv(EnvPrefix + key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, EnvPrefix+key+": "+err.Error())
				return
			}
			*dst = b
		}
	}

	str("SCHEMA", &cfg.Schema)
	str("QUERIES", &cfg.Queries)
	str("OUT", &cfg.Out)
	str("WORK_DIR", &cfg.WorkDir)
	str("ARCHIVE", &cfg.Archive)
	str("BUNDLER", &cfg.Bundler)
	str("CODEGEN_CMD", &cfg.Tools.Codegen)
	str("TSC_CMD", &cfg.Tools.Tsc)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	boolean("PERSISTED", &cfg.Persisted)
	boolean("FLATTEN", &cfg.Flatten)
	boolean("GITIGNORE", &cfg.Gitignore)
	boolean("MINIFY", &cfg.Minify)
	if v := getenv(EnvPrefix + "ORGANIZATIONAL"); v != "" {
		cfg.Organizational = splitList(v)
	}
	if v := getenv(EnvPrefix + "CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, EnvPrefix+"CONCURRENCY: "+err.Error())
		} else {
			cfg.Concurrency = n
		}
	}
	if len(errs) > 0 {
		return failure.New(failure.Config, "invalid environment: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks settings that do not depend on the filesystem.
func (c Config) Validate() error {
	switch c.Bundler {
	case BundlerEsbuild, BundlerInline:
	default:
		return failure.New(failure.Config, "unknown bundler %q (want %s or %s)", c.Bundler, BundlerEsbuild, BundlerInline)
	}
	if c.Concurrency < 0 {
		return failure.New(failure.Config, "concurrency must be >= 0, got %d", c.Concurrency)
	}
	if strings.TrimSpace(c.Out) == "" {
		return failure.New(failure.Config, "output directory must be set")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
