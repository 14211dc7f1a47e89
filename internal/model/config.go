package model

import "time"

// Config is the full process configuration. Defaults come from
// DefaultConfig; viper overlays file/env/flag values on top.
type Config struct {
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Media  MediaConfig  `yaml:"media" mapstructure:"media"`
	LLM    LLMConfig    `yaml:"llm" mapstructure:"llm"`
	STT    STTConfig    `yaml:"stt" mapstructure:"stt"`
	Verify VerifyConfig `yaml:"verify" mapstructure:"verify"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP service
type ServerConfig struct {
	Host           string   `yaml:"host" mapstructure:"host"`
	Port           int      `yaml:"port" mapstructure:"port" validate:"gt=0,lte=65535"`
	UploadDir      string   `yaml:"upload_dir" mapstructure:"upload_dir" validate:"required"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes" validate:"gt=0"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// MediaConfig configures the external audio extraction tool
type MediaConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path" mapstructure:"ffmpeg_path" validate:"required"`
	FFprobePath string `yaml:"ffprobe_path" mapstructure:"ffprobe_path" validate:"required"`
}

// LLMConfig configures the text-generation service
type LLMConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider" validate:"oneof=openai groq ollama"`
	Model      string `yaml:"model" mapstructure:"model" validate:"required"`
	APIKey     string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	Timeout    int    `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"` // seconds, per call
	MaxTokens  int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	HTTPProxy  string `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// STTConfig configures the speech-to-text service
type STTConfig struct {
	Model string `yaml:"model" mapstructure:"model" validate:"required"`
}

// VerifyConfig configures the per-claim verification fan-out.
// Concurrency defaults to 1: verdict N+1 is requested only after verdict N
// completes. Raising it keeps result order and the all-or-nothing contract.
type VerifyConfig struct {
	Concurrency       int     `yaml:"concurrency" mapstructure:"concurrency" validate:"gt=0"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int     `yaml:"burst" mapstructure:"burst" validate:"gt=0"`
}

// StoreConfig configures the server-side result store
type StoreConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// LogConfig configures logging output
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=console json"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           5001,
			UploadDir:      "uploads",
			MaxUploadBytes: 200 << 20,
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Media: MediaConfig{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
		},
		LLM: LLMConfig{
			Provider:  "groq",
			Model:     "llama-3.1-8b-instant",
			Timeout:   60,
			MaxTokens: 1024,
		},
		STT: STTConfig{
			Model: "whisper-large-v3-turbo",
		},
		Verify: VerifyConfig{
			Concurrency:       1,
			RequestsPerSecond: 2,
			Burst:             2,
		},
		Store: StoreConfig{
			Enabled: true,
			TTL:     30 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
