package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
    Level      string
    Pretty     bool
    File       string
    MaxSizeMB  int
    MaxBackups int
    MaxAgeDays int
    Compress   bool
}

// AxiomConfig holds Axiom logging configuration.
type AxiomConfig struct {
    Send          bool
    APIKey        string
    OrgID         string
    Dataset       string
    FlushInterval time.Duration
}

// JobConfig describes one annotation run: which deck, where the result
// goes, and how the notes column is laid out.
type JobConfig struct {
    InputRef    string // local path, file://, http(s):// or s3://
    OutputPath  string
    CourseName  string
    Side        string  // "right" or "left"
    MarginRatio float64 // notes column width as a fraction of slide width
    Pages       string  // selection spec like "1,3-5"; empty means all
    CacheRoot   string
    Force       bool
}

// GeneratorConfig bounds the text-generation call and its retry policy.
type GeneratorConfig struct {
    Model           string
    MaxOutputTokens int
    ReasoningEffort string
    Verbosity       string
    MaxAttempts     int
    InitialBackoff  time.Duration
    MaxBackoff      time.Duration
}

// RendererConfig locates the external Markdown renderer.
type RendererConfig struct {
    NodeBin string
    Script  string
    Timeout time.Duration
}

// PublishConfig controls optional S3 publication of the finished document.
type PublishConfig struct {
    Bucket string
    Prefix string
}

// Config is the top-level configuration.
type Config struct {
    Logging     LoggingConfig
    Axiom       AxiomConfig
    Job         JobConfig
    Generator   GeneratorConfig
    Renderer    RendererConfig
    Publish     PublishConfig
    MetricsAddr string
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
    cfg := Config{}

    cfg.Logging = LoggingConfig{
        Level:      getEnv("LOG_LEVEL", "info"),
        Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
        File:       getEnv("LOG_FILE", "logs/decknotes.log"),
        MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
        MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
        MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
        Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
    }

    baseDataset := getEnv("AXIOM_DATASET", "dev")
    cfg.Axiom = AxiomConfig{
        Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
        APIKey:        getEnv("AXIOM_API_KEY", ""),
        OrgID:         getEnv("AXIOM_ORG_ID", ""),
        Dataset:       baseDataset + "_decknotes",
        FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
    }

    cfg.Job = JobConfig{
        InputRef:    getEnv("INPUT_PDF", ""),
        OutputPath:  getEnv("OUTPUT_PDF", ""),
        CourseName:  getEnv("COURSE_NAME", "(unspecified)"),
        Side:        strings.ToLower(getEnv("NOTE_SIDE", "right")),
        MarginRatio: parseFloat(getEnv("MARGIN_RATIO", "1.0"), 1.0),
        Pages:       getEnv("PAGES", ""),
        CacheRoot:   getEnv("CACHE_ROOT", ".annot_cache"),
        Force:       parseBool(getEnv("FORCE_REGENERATE", "0")),
    }

    cfg.Generator = GeneratorConfig{
        Model:           getEnv("OPENAI_MODEL", "gpt-5"),
        MaxOutputTokens: parseInt(getEnv("OPENAI_MAX_OUTPUT_TOKENS", "2000"), 2000),
        ReasoningEffort: getEnv("OPENAI_REASONING_EFFORT", "low"),
        Verbosity:       getEnv("OPENAI_VERBOSITY", "medium"),
        MaxAttempts:     parseInt(getEnv("GENERATION_MAX_ATTEMPTS", "5"), 5),
        InitialBackoff:  parseDuration(getEnv("GENERATION_BACKOFF_INITIAL", "1s"), time.Second),
        MaxBackoff:      parseDuration(getEnv("GENERATION_BACKOFF_MAX", "20s"), 20*time.Second),
    }

    cfg.Renderer = RendererConfig{
        NodeBin: getEnv("NODE_BIN", "node"),
        Script:  getEnv("NOTE_RENDERER_SCRIPT", "render/render-note.js"),
        Timeout: parseDuration(getEnv("RENDER_TIMEOUT", "120s"), 120*time.Second),
    }

    cfg.Publish = PublishConfig{
        Bucket: getEnv("AWS_S3_BUCKET", ""),
        Prefix: getEnv("AWS_S3_PREFIX", "annotated"),
    }

    cfg.MetricsAddr = getEnv("METRICS_ADDR", "")

    return cfg
}

// Helpers
func getEnv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func parseInt(s string, def int) int {
    if s == "" { return def }
    if n, err := strconv.Atoi(s); err == nil { return n }
    return def
}

func parseFloat(s string, def float64) float64 {
    if s == "" { return def }
    if f, err := strconv.ParseFloat(s, 64); err == nil { return f }
    return def
}

func parseBool(s string) bool {
    v := strings.ToLower(strings.TrimSpace(s))
    return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
    if s == "" { return def }
    if d, err := time.ParseDuration(s); err == nil { return d }
    return def
}

func devDefaultPretty() string {
    env := strings.ToLower(os.Getenv("ENVIRONMENT"))
    if env == "dev" || env == "development" || env == "local" { return "true" }
    return "false"
}
