package shared

import "time"

// HTTP Client Configuration
const (
	DefaultHTTPTimeout       = 180 * time.Second
	DefaultDialTimeout       = 2 * time.Second
	DefaultShutdownTimeout   = 30 * time.Second
	DefaultStartupTimeout    = 30 * time.Second
	DefaultReadHeaderTimeout = 10 * time.Second
)

// Generation Configuration
const (
	DefaultModelRepo         = "asthaaa300/results"
	DefaultInferenceURL      = "https://api-inference.huggingface.co"
	DefaultHubURL            = "https://huggingface.co"
	DefaultGenerationTimeout = 120 * time.Second
	DefaultMaxGenerations    = 1
)

// Slot Configuration
const (
	SlotKeyPrefix    = "careermind:slot"
	SlotPollInterval = 250 * time.Millisecond
	// Slot keys outlive the generation timeout so a crashed holder frees its slot
	SlotTTLMargin = 30 * time.Second
)

// ATS Configuration
const (
	DefaultGeminiModel = "gemini-1.5-flash"
	MaxResumeBytes     = 10 << 20
)

// Market Configuration
const (
	DefaultTopLimit = 10
	MaxTopLimit     = 100
)

// API Configuration
const (
	APIKeyLength = 32
)
