package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	ReadLimitBytes  int64         `mapstructure:"read_limit_bytes"`
}

// VoiceConfig carries the turn-taking knobs of the voice engine.
type VoiceConfig struct {
	SampleRate             int           `mapstructure:"sample_rate"`
	FrameMs                int           `mapstructure:"frame_ms"`
	MinEnergyThreshold     float64       `mapstructure:"min_energy_threshold"`
	SpeechFramesThreshold  int           `mapstructure:"speech_frames_threshold"`
	SilenceFramesThreshold int           `mapstructure:"silence_frames_threshold"`
	MaxBufferBytes         int           `mapstructure:"max_buffer_bytes"`
	SilenceThreshold       time.Duration `mapstructure:"silence_threshold"`
	SilencePollInterval    time.Duration `mapstructure:"silence_poll_interval"`
	AutoEndTurn            bool          `mapstructure:"auto_end_turn"`
	WorkerPoolSize         int           `mapstructure:"worker_pool_size"`
	TranscribeTimeout      time.Duration `mapstructure:"transcribe_timeout"`
	RespondTimeout         time.Duration `mapstructure:"respond_timeout"`
	SynthesizeTimeout      time.Duration `mapstructure:"synthesize_timeout"`
	DefaultFormat          string        `mapstructure:"default_format"`
	IdleSessionTTL         time.Duration `mapstructure:"idle_session_ttl"`
	SweepInterval          time.Duration `mapstructure:"sweep_interval"`
	OutboundQueue          int           `mapstructure:"outbound_queue"`
	MailboxSize            int           `mapstructure:"mailbox_size"`
}

type VADConfig struct {
	Backend       string        `mapstructure:"backend"` // energy | silero
	SileroURL     string        `mapstructure:"silero_url"`
	SileroTimeout time.Duration `mapstructure:"silero_timeout"`
	Cooldown      time.Duration `mapstructure:"cooldown"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type STTConfig struct {
	Backend    string `mapstructure:"backend"` // openai | whisper
	Model      string `mapstructure:"model"`
	Language   string `mapstructure:"language"`
	WhisperURL string `mapstructure:"whisper_url"`
}

type LLMModelConfig struct {
	Name string `mapstructure:"name"`
	Url  string `mapstructure:"url"`
}

type LLMConfig struct {
	Backend      string           `mapstructure:"backend"` // openai | gemini | ollama
	Model        string           `mapstructure:"model"`
	GeminiAPIKey string           `mapstructure:"gemini_api_key"`
	OllamaHosts  []LLMModelConfig `mapstructure:"ollama_hosts"`
	Persona      string           `mapstructure:"persona"`
	HistoryTurns int              `mapstructure:"history_turns"`

	// HistoryRetention bounds stored history age; zero keeps it forever.
	HistoryRetention time.Duration `mapstructure:"history_retention"`
}

type TTSConfig struct {
	Backend  string `mapstructure:"backend"` // openai | piper
	Model    string `mapstructure:"model"`
	Voice    string `mapstructure:"voice"`
	Format   string `mapstructure:"format"`
	PiperURL string `mapstructure:"piper_url"`
}

type CacheConfig struct {
	Backend    string        `mapstructure:"backend"` // memory | redis
	MaxEntries int           `mapstructure:"max_entries"`
	TTL        time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
	Pass string `mapstructure:"pass"`
	DB   int    `mapstructure:"db"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	PoolSize int    `mapstructure:"pool_size"`
}

func (d DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Name)
}

// Enabled reports whether a database was configured at all.
func (d DBConfig) Enabled() bool {
	return d.Host != ""
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type Settings struct {
	Server ServerConfig `mapstructure:"server"`
	Voice  VoiceConfig  `mapstructure:"voice"`
	VAD    VADConfig    `mapstructure:"vad"`
	OpenAI OpenAIConfig `mapstructure:"openai"`
	STT    STTConfig    `mapstructure:"stt"`
	LLM    LLMConfig    `mapstructure:"llm"`
	TTS    TTSConfig    `mapstructure:"tts"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Redis  RedisConfig  `mapstructure:"redis"`
	DB     DBConfig     `mapstructure:"database"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Env    string       `mapstructure:"env"`
	Debug  bool         `mapstructure:"debug"`
}

func Load() (*Settings, error) {
	// Load settings from a configuration file or environment variables
	v := newViper()
	v.SetConfigName("config_" + genEnv(v))
	v.AddConfigPath(".")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return unmarshal(v)
}

// LoadFile reads settings from an explicit file path.
func LoadFile(path string) (*Settings, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Settings, error) {
	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.read_limit_bytes", 16<<20)

	v.SetDefault("voice.sample_rate", 16000)
	v.SetDefault("voice.frame_ms", 30)
	v.SetDefault("voice.min_energy_threshold", 500.0)
	v.SetDefault("voice.speech_frames_threshold", 3)
	v.SetDefault("voice.silence_frames_threshold", 10)
	v.SetDefault("voice.max_buffer_bytes", 10<<20)
	v.SetDefault("voice.silence_threshold", 1500*time.Millisecond)
	v.SetDefault("voice.silence_poll_interval", 250*time.Millisecond)
	v.SetDefault("voice.auto_end_turn", true)
	v.SetDefault("voice.worker_pool_size", 8)
	v.SetDefault("voice.transcribe_timeout", 30*time.Second)
	v.SetDefault("voice.respond_timeout", 30*time.Second)
	v.SetDefault("voice.synthesize_timeout", 30*time.Second)
	v.SetDefault("voice.default_format", "webm")
	v.SetDefault("voice.idle_session_ttl", 10*time.Minute)
	v.SetDefault("voice.sweep_interval", time.Minute)
	v.SetDefault("voice.outbound_queue", 64)
	v.SetDefault("voice.mailbox_size", 128)

	v.SetDefault("vad.backend", "energy")
	v.SetDefault("vad.silero_url", "http://localhost:8001")
	v.SetDefault("vad.silero_timeout", 200*time.Millisecond)
	v.SetDefault("vad.cooldown", 10*time.Second)

	v.SetDefault("stt.backend", "openai")
	v.SetDefault("stt.model", "whisper-1")
	v.SetDefault("stt.language", "en")
	v.SetDefault("llm.backend", "openai")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.history_turns", 6)
	v.SetDefault("llm.history_retention", 30*24*time.Hour)
	v.SetDefault("tts.backend", "openai")
	v.SetDefault("tts.model", "tts-1")
	v.SetDefault("tts.voice", "alloy")
	v.SetDefault("tts.format", "mp3")

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.max_entries", 256)
	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("auth.token_ttl", time.Hour)
}

var supportedRates = map[int]bool{8000: true, 16000: true, 32000: true, 48000: true}

// Validate checks the voice settings against what the VAD frame contract accepts.
func (s *Settings) Validate() error {
	if !supportedRates[s.Voice.SampleRate] {
		return fmt.Errorf("voice.sample_rate %d not supported (8000, 16000, 32000, 48000)", s.Voice.SampleRate)
	}
	switch s.Voice.FrameMs {
	case 10, 20, 30:
	default:
		return fmt.Errorf("voice.frame_ms %d not supported (10, 20, 30)", s.Voice.FrameMs)
	}
	if s.Voice.MaxBufferBytes <= 0 {
		return fmt.Errorf("voice.max_buffer_bytes must be positive")
	}
	if s.Voice.SpeechFramesThreshold <= 0 || s.Voice.SilenceFramesThreshold <= 0 {
		return fmt.Errorf("voice frame thresholds must be positive")
	}
	if s.Voice.WorkerPoolSize <= 0 {
		return fmt.Errorf("voice.worker_pool_size must be positive")
	}
	return nil
}

func genEnv(v *viper.Viper) string {
	env := v.GetString("ENV")
	if env == "" {
		return "dev"
	}
	return env
}
