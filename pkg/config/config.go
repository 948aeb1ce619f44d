// Package config loads the pipeline configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"

	// DefaultOutputDir is the default directory for generated datasets.
	DefaultOutputDir = "./data"

	// DefaultDatasetFile is the file name of the published dataset inside
	// the output directory.
	DefaultDatasetFile = "record_progressions.csv"

	// DefaultSimilarityThreshold is the Jaro-Winkler score at which two
	// athlete names are flagged for review.
	DefaultSimilarityThreshold = 0.93

	// DefaultSeed seeds minted athlete ids so repeated builds agree.
	DefaultSeed = 23

	// DefaultParallelism bounds concurrent source-file parsing.
	DefaultParallelism = 4
)

// Config is the root configuration for recordtrail.
type Config struct {
	Global  GlobalConfig  `yaml:"global"`
	Sources SourcesConfig `yaml:"sources"`
	Build   BuildConfig   `yaml:"build"`
	Publish PublishConfig `yaml:"publish"`
}

// GlobalConfig contains global application settings.
type GlobalConfig struct {
	LogLevel string `yaml:"log_level"`
}

// SourcesConfig names the input files of one build.
type SourcesConfig struct {
	// ExportFiles are governing-body CSV downloads.
	ExportFiles []string `yaml:"export_files"`

	// ResultFiles are extracted meet-result text files, each tagged with
	// its championship year to select the parsing layout.
	ResultFiles []ResultFile `yaml:"result_files"`
}

// ResultFile is one extracted meet-result text file.
type ResultFile struct {
	Path string `yaml:"path"`
	Year int    `yaml:"year"`
}

// BuildConfig contains pipeline settings.
type BuildConfig struct {
	// CorrectionsFile points at the versioned correction patch applied
	// after merging. Optional.
	CorrectionsFile string `yaml:"corrections_file,omitempty"`

	OutputDir           string  `yaml:"output_dir"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	Seed                int64   `yaml:"seed"`
	Parallelism         int     `yaml:"parallelism"`
}

// PublishConfig contains dataset publishing settings.
type PublishConfig struct {
	S3 *S3PublishConfig `yaml:"s3,omitempty"`
}

// S3PublishConfig contains S3-compatible storage settings.
type S3PublishConfig struct {
	EndpointURL     string `yaml:"endpoint_url,omitempty"`
	Region          string `yaml:"region,omitempty"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
	Prefix          string `yaml:"prefix,omitempty"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
	StorageClass    string `yaml:"storage_class,omitempty"`
	ACL             string `yaml:"acl,omitempty"`
}

// Load reads and parses a configuration file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults sets default values for unspecified configuration options.
func (c *Config) applyDefaults() {
	if c.Global.LogLevel == "" {
		c.Global.LogLevel = DefaultLogLevel
	}

	if c.Build.OutputDir == "" {
		c.Build.OutputDir = DefaultOutputDir
	}

	if c.Build.SimilarityThreshold == 0 {
		c.Build.SimilarityThreshold = DefaultSimilarityThreshold
	}

	if c.Build.Seed == 0 {
		c.Build.Seed = DefaultSeed
	}

	if c.Build.Parallelism <= 0 {
		c.Build.Parallelism = DefaultParallelism
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if len(c.Sources.ExportFiles) == 0 && len(c.Sources.ResultFiles) == 0 {
		return fmt.Errorf("at least one source file must be configured")
	}

	seen := make(map[string]struct{})

	for i, path := range c.Sources.ExportFiles {
		if path == "" {
			return fmt.Errorf("export file %d: path is required", i)
		}

		if _, dup := seen[path]; dup {
			return fmt.Errorf("export file %d: duplicate path %q", i, path)
		}

		seen[path] = struct{}{}
	}

	for i, rf := range c.Sources.ResultFiles {
		if rf.Path == "" {
			return fmt.Errorf("result file %d: path is required", i)
		}

		if rf.Year == 0 {
			return fmt.Errorf("result file %q: year is required", rf.Path)
		}

		if _, dup := seen[rf.Path]; dup {
			return fmt.Errorf("result file %d: duplicate path %q", i, rf.Path)
		}

		seen[rf.Path] = struct{}{}
	}

	if c.Build.SimilarityThreshold < 0 || c.Build.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be between 0 and 1")
	}

	if c.Build.OutputDir != "" {
		dir := filepath.Dir(c.Build.OutputDir)
		if dir != "." && dir != ".." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory parent %q does not exist", dir)
			}
		}
	}

	if c.Publish.S3 != nil && c.Publish.S3.Bucket == "" {
		return fmt.Errorf("s3 publishing requires a bucket")
	}

	return nil
}

// DatasetPath returns the location of the published dataset file.
func (c *Config) DatasetPath() string {
	return filepath.Join(c.Build.OutputDir, DefaultDatasetFile)
}
