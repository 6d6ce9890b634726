package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DirName is the per-user settings directory under $HOME.
const DirName = ".surveyloom"

// Global configuration structure.
type Global struct {
	// Answers that are never counted, e.g. "Затрудняюсь ответить".
	TrashList   []string `mapstructure:"trash_list" yaml:"trash_list"`
	ScaleLabels []string `mapstructure:"scale_labels" yaml:"scale_labels"`
	MoodLabels  []string `mapstructure:"mood_labels" yaml:"mood_labels"`
	YesTokens   []string `mapstructure:"yes_tokens" yaml:"yes_tokens"`
	NoTokens    []string `mapstructure:"no_tokens" yaml:"no_tokens"`

	// Sampling
	ConfidenceLevel float64 `mapstructure:"confidence_level" yaml:"confidence_level"`
	Proportion      float64 `mapstructure:"proportion" yaml:"proportion"`
	MarginOfError   float64 `mapstructure:"margin_of_error" yaml:"margin_of_error"`

	// Raking
	RakingMaxIterations int     `mapstructure:"raking_max_iterations" yaml:"raking_max_iterations"`
	RakingTolerance     float64 `mapstructure:"raking_tolerance" yaml:"raking_tolerance"`

	Parallelism int      `mapstructure:"parallelism" yaml:"parallelism"`
	HeaderRow   int      `mapstructure:"header_row" yaml:"header_row"`
	PageMarkers []string `mapstructure:"page_markers" yaml:"page_markers"`

	ProjectsDir string `mapstructure:"projects_dir" yaml:"projects_dir"`
	DataDir     string `mapstructure:"data_dir" yaml:"data_dir"`
	OutputDir   string `mapstructure:"output_dir" yaml:"output_dir"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"trash_list", "scale_labels", "mood_labels", "yes_tokens", "no_tokens",
	"confidence_level", "proportion", "margin_of_error",
	"raking_max_iterations", "raking_tolerance",
	"parallelism", "header_row", "page_markers",
	"projects_dir", "data_dir", "output_dir", "log_level",
}

// Path returns the config file in use: cfgFile, or ~/.surveyloom/config.yaml.
func Path(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, DirName, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.surveyloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path, err := Path(cfgFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("trash_list", []string{"Затрудняюсь ответить", "Не знаю", "Hard to say"})
	v.SetDefault("scale_labels", []string{"Great", "Good", "Poor"})
	v.SetDefault("mood_labels", []string{"Excellent", "Good", "Poor"})
	v.SetDefault("yes_tokens", []string{"yes", "да"})
	v.SetDefault("no_tokens", []string{"no", "нет"})
	v.SetDefault("confidence_level", 0.95)
	v.SetDefault("proportion", 0.5)
	v.SetDefault("margin_of_error", 0.05)
	v.SetDefault("raking_max_iterations", 100)
	v.SetDefault("raking_tolerance", 1e-6)
	v.SetDefault("parallelism", 1)
	v.SetDefault("header_row", 1)
	v.SetDefault("page_markers", []string{"Страница", "Page"})
	v.SetDefault("projects_dir", "")
	v.SetDefault("data_dir", "")
	v.SetDefault("output_dir", ".")
	v.SetDefault("log_level", "warn")
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
// A .env file in the working directory is loaded into the environment first.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("SURVEYLOOM")
	v.AutomaticEnv()
	setDefaults(v)

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home dir: %w", err)
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(filepath.Join(home, DirName))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.ProjectsDir == "" {
		c.ProjectsDir = filepath.Join(home, DirName, "projects")
	}
	if c.DataDir == "" {
		c.DataDir = filepath.Join(home, DirName, "data")
	}
	return &c, nil
}

// Set parses value for key and assigns it. List keys take a comma separated value.
func (c *Global) Set(key, value string) error {
	switch key {
	case "trash_list":
		c.TrashList = splitList(value)
	case "scale_labels", "mood_labels":
		labels := splitList(value)
		if len(labels) != 3 {
			return fmt.Errorf("%s needs 3 labels (top, middle, bottom), got %d", key, len(labels))
		}
		if key == "scale_labels" {
			c.ScaleLabels = labels
		} else {
			c.MoodLabels = labels
		}
	case "yes_tokens":
		c.YesTokens = splitList(value)
	case "no_tokens":
		c.NoTokens = splitList(value)
	case "page_markers":
		c.PageMarkers = splitList(value)
	case "confidence_level", "proportion", "margin_of_error", "raking_tolerance":
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("%s: invalid number %q", key, value)
		}
		switch key {
		case "confidence_level":
			c.ConfidenceLevel = f
		case "proportion":
			c.Proportion = f
		case "margin_of_error":
			c.MarginOfError = f
		default:
			c.RakingTolerance = f
		}
	case "raking_max_iterations", "parallelism", "header_row":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", key, value)
		}
		switch key {
		case "raking_max_iterations":
			c.RakingMaxIterations = n
		case "parallelism":
			c.Parallelism = n
		default:
			c.HeaderRow = n
		}
	case "projects_dir":
		c.ProjectsDir = value
	case "data_dir":
		c.DataDir = value
	case "output_dir":
		c.OutputDir = value
	case "log_level":
		c.LogLevel = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// AddTrash appends answers to the trash list, skipping duplicates. It
// reports how many were added.
func (c *Global) AddTrash(answers ...string) int {
	seen := make(map[string]bool, len(c.TrashList))
	for _, t := range c.TrashList {
		seen[strings.TrimSpace(t)] = true
	}
	added := 0
	for _, a := range answers {
		a = strings.TrimSpace(a)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		c.TrashList = append(c.TrashList, a)
		added++
	}
	return added
}

// RemoveTrash drops answers from the trash list and reports how many were removed.
func (c *Global) RemoveTrash(answers ...string) int {
	drop := make(map[string]bool, len(answers))
	for _, a := range answers {
		drop[strings.TrimSpace(a)] = true
	}
	kept := c.TrashList[:0]
	for _, t := range c.TrashList {
		if !drop[strings.TrimSpace(t)] {
			kept = append(kept, t)
		}
	}
	removed := len(c.TrashList) - len(kept)
	c.TrashList = kept
	return removed
}
