package server

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/janelia-flyem/omezarr/ngff"
	"github.com/janelia-flyem/omezarr/storage"
)

const (
	// DefaultWebAddress is the default address of the layer server.
	DefaultWebAddress = "localhost:8000"

	// DefaultCachedLayers is the default number of layer lists kept in memory.
	DefaultCachedLayers = 64
)

// Config is the TOML server configuration, e.g.,
//
//	[server]
//	httpAddress = ":8000"
//	corsOrigins = ["https://viewer.example.org"]
//	root = "data"    # relative paths in requests are read from here
//	allowed_schemes = ["s3"] # remote stores readable besides the root
//	timeout = 60     # seconds per read
//
//	[logging]
//	logfile = "omezarr.log"
//	max_log_size = 500 # MB
//	max_log_age = 30   # days
//
//	[cache]
//	metadata_mb = 16
//	layers = 64
type Config struct {
	Server  serverConfig
	Logging ngff.LogConfig
	Cache   cacheConfig
}

type serverConfig struct {
	HTTPAddress string   `toml:"httpAddress"`
	CORSOrigins []string `toml:"corsOrigins"`
	Root        string   `toml:"root"`
	Timeout     int      `toml:"timeout"`

	// AllowedSchemes lists the remote schemes, e.g. "s3" or "https", that
	// requests may name directly.  Without a root and an allowlist, any
	// registered scheme can be read.
	AllowedSchemes []string `toml:"allowed_schemes"`
}

type cacheConfig struct {
	MetadataMB int `toml:"metadata_mb"`
	Layers     int `toml:"layers"`
}

// DefaultConfig returns the configuration used without a TOML file.
func DefaultConfig() *Config {
	c := new(Config)
	c.Server.HTTPAddress = DefaultWebAddress
	c.Server.Timeout = 60
	c.Cache.MetadataMB = storage.DefaultCacheSize >> 20
	c.Cache.Layers = DefaultCachedLayers
	return c
}

// LoadConfig loads server configuration from a TOML file, using defaults
// for any missing settings.
func LoadConfig(filename string) (*Config, error) {
	if filename == "" {
		return nil, fmt.Errorf("no server TOML configuration file provided")
	}
	c := DefaultConfig()
	if _, err := toml.DecodeFile(filename, c); err != nil {
		return nil, fmt.Errorf("could not decode TOML config: %v", err)
	}
	if err := c.convertPathsToAbsolute(filename); err != nil {
		return nil, fmt.Errorf("could not convert relative paths to absolute paths in TOML config: %v", err)
	}
	ngff.Infof("tomlConfig: %+v\n", *c)
	return c, nil
}

// Some settings in the TOML can be given as relative paths.
// This function converts them in-place to absolute paths,
// assuming the given paths were relative to the TOML file's own directory.
func (c *Config) convertPathsToAbsolute(configPath string) error {
	var err error
	configDir := filepath.Dir(configPath)

	// [server].root
	if c.Server.Root != "" {
		if scheme, _ := storage.SplitScheme(c.Server.Root); scheme == "" {
			if c.Server.Root, err = convertToAbsolute(c.Server.Root, configDir); err != nil {
				return fmt.Errorf("error converting root setting to absolute path: %v", err)
			}
		}
	}

	// [logging].logfile
	if c.Logging.Logfile != "" {
		if c.Logging.Logfile, err = convertToAbsolute(c.Logging.Logfile, configDir); err != nil {
			return fmt.Errorf("error converting logfile setting to absolute path: %v", err)
		}
	}
	return nil
}

func convertToAbsolute(path, dir string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	return filepath.Abs(filepath.Join(dir, path))
}

// Apply sets the logger and metadata cache size from the configuration.
func (c *Config) Apply() {
	if c.Logging.Logfile != "" {
		c.Logging.SetLogger()
	}
	storage.SetCacheSize(c.Cache.MetadataMB << 20)
}

// schemeAllowed returns true if requests may name a remote store with the scheme.
func (c *Config) schemeAllowed(scheme string) bool {
	if len(c.Server.AllowedSchemes) == 0 {
		return c.Server.Root == ""
	}
	for _, allowed := range c.Server.AllowedSchemes {
		if strings.EqualFold(allowed, scheme) {
			return true
		}
	}
	return false
}

// resolvePath returns the reference to read for a requested path.  Local
// paths are confined to a configured root, and remote stores must use an
// allowed scheme.
func (c *Config) resolvePath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("no path given")
	}
	scheme, rest := storage.SplitScheme(p)
	if scheme == "file" {
		if c.Server.Root == "" {
			return p, nil
		}
		return c.resolveLocal(rest)
	}
	if scheme != "" {
		if !c.schemeAllowed(scheme) {
			return "", fmt.Errorf("scheme %q not allowed in path %q", scheme, p)
		}
		return p, nil
	}
	if c.Server.Root == "" {
		return p, nil
	}
	if filepath.IsAbs(p) {
		return "", fmt.Errorf("absolute path %q not allowed with a configured root", p)
	}
	for _, elem := range strings.Split(filepath.ToSlash(p), "/") {
		if elem == ".." {
			return "", fmt.Errorf("path %q leaves the configured root", p)
		}
	}
	if scheme, _ := storage.SplitScheme(c.Server.Root); scheme != "" {
		return strings.TrimRight(c.Server.Root, "/") + "/" + strings.TrimLeft(filepath.ToSlash(p), "/"), nil
	}
	return filepath.Join(c.Server.Root, p), nil
}

// resolveLocal accepts an absolute file path only if it lies within a local root.
func (c *Config) resolveLocal(p string) (string, error) {
	if scheme, _ := storage.SplitScheme(c.Server.Root); scheme != "" && scheme != "file" {
		return "", fmt.Errorf("local path %q not allowed with root %q", p, c.Server.Root)
	}
	_, root := storage.SplitScheme(c.Server.Root)
	p = filepath.Clean(filepath.FromSlash(p))
	if !filepath.IsAbs(p) {
		return "", fmt.Errorf("file path %q must be absolute", p)
	}
	rel, err := filepath.Rel(filepath.Clean(root), p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q outside the configured root", p)
	}
	return p, nil
}
