package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/profilematch/internal/scoring"
)

const (
	app = "profilematch"
)

type Config struct {
	ProfilesDir        string          `mapstructure:"profiles-dir"`
	JobDescriptionsDir string          `mapstructure:"job-descriptions-dir"`
	OutputDir          string          `mapstructure:"output-dir"`
	OutputFormat       string          `mapstructure:"output-format"`
	ReaderConcurrency  int             `mapstructure:"reader-concurrency"`
	Matching           *MatchingConfig `mapstructure:"matching"`
	AI                 *AIConfig       `mapstructure:"ai"`
	Watch              *WatchConfig    `mapstructure:"watch"`
}

type MatchingConfig struct {
	Weights        scoring.Weights `mapstructure:"weights"`
	MatchThreshold int             `mapstructure:"match-threshold"`
	TopN           int             `mapstructure:"top-n"`
}

type AIConfig struct {
	Provider    string        `mapstructure:"provider"`
	Temperature float32       `mapstructure:"temperature"`
	Gemini      *GeminiConfig `mapstructure:"gemini"`
	Ollama      *OllamaConfig `mapstructure:"ollama"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key" json:"-"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type OllamaConfig struct {
	URL     string        `mapstructure:"url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "profilematch matches candidate profiles against team job descriptions with an LLM",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"ai.gemini.api-key":      "GEMINI_API_KEY",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"ai.provider":            "PROFILEMATCH_PROVIDER",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is profilematch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	rootCmd.PersistentFlags().StringP("output-format", "o", "", "report format: json or text (default json)")
	rootCmd.PersistentFlags().String("profiles-dir", "", "directory with candidate profiles (default profiles)")
	rootCmd.PersistentFlags().String("job-descriptions-dir", "", "directory with job descriptions (default job_descriptions)")
	rootCmd.PersistentFlags().String("output-dir", "", "directory for reports (default outputs)")

	for _, name := range []string{"output-format", "profiles-dir", "job-descriptions-dir", "output-dir"} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func setDefaults(v *viper.Viper) {
	weights := scoring.DefaultWeights()

	v.SetDefault("profiles-dir", "profiles")
	v.SetDefault("job-descriptions-dir", "job_descriptions")
	v.SetDefault("output-dir", "outputs")
	v.SetDefault("output-format", "json")
	v.SetDefault("reader-concurrency", 4)

	v.SetDefault("matching.weights.technical-skills", weights.TechnicalSkills)
	v.SetDefault("matching.weights.experience", weights.Experience)
	v.SetDefault("matching.weights.education", weights.Education)
	v.SetDefault("matching.weights.overall-fit", weights.OverallFit)
	v.SetDefault("matching.match-threshold", scoring.DefaultThreshold)
	v.SetDefault("matching.top-n", 3)

	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.gemini.model", "gemini-2.5-pro")
	v.SetDefault("ai.gemini.max-retries", 3)
	v.SetDefault("ai.gemini.max-log-length", 200)
	v.SetDefault("ai.ollama.url", "http://localhost:11434")
	v.SetDefault("ai.ollama.model", "llama3.1")
	v.SetDefault("ai.ollama.timeout", "300s")

	v.SetDefault("watch.debounce", "2s")
}

func initConfig() {
	if err := readConfig(viper.GetViper(), cfgFile); err != nil {
		// We can't proceed if the config file parsed with error.
		log.Fatal(err)
	}
}

// readConfig loads the explicit config file, or profilematch.yaml from the current directory
// when it exists. Running without a config file is fine: defaults cover every key.
func readConfig(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
		return v.ReadInConfig()
	}

	v.AddConfigPath(".")
	v.SetConfigName(app)
	v.SetConfigType("yaml")

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Matching == nil {
		config.Matching = &MatchingConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.AI.Ollama == nil {
		config.AI.Ollama = &OllamaConfig{}
	}
	if config.Watch == nil {
		config.Watch = &WatchConfig{}
	}

	return config, nil
}
