package config

import "time"

// Default generation parameters for the synchronous chat endpoint. They
// mirror what the remote service applies when a request omits them.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1200
	DefaultHistorySize = 12
)

// ChatConfig describes the remote reasoning service endpoints.
type ChatConfig struct {
	// BaseURL is the asynchronous submission endpoint. POST enqueues a
	// prompt, GET {BaseURL}/{job_id} polls it. Empty disables async mode.
	BaseURL string `env:"CHAT_BASE_URL"`

	// ChatURL is the synchronous chat endpoint. Optional.
	ChatURL string `env:"CHAT_SYNC_URL"`

	// Username and Password are sent as HTTP Basic auth when both are set.
	Username string `env:"CHAT_USERNAME"`
	Password string `env:"CHAT_PASSWORD"`

	// ReplyPath is the JMESPath applied to poll responses to locate the
	// reply text. Defaults to "result.reply".
	ReplyPath string `env:"CHAT_REPLY_PATH" envDefault:"result.reply"`

	// Timeout bounds each HTTP request to the remote service.
	Timeout time.Duration `env:"CHAT_TIMEOUT" envDefault:"30s"`

	// Temperature and MaxTokens are the generation parameters sent with
	// synchronous chat requests.
	Temperature float64 `env:"CHAT_TEMPERATURE" envDefault:"0.7"`
	MaxTokens   int     `env:"CHAT_MAX_TOKENS" envDefault:"1200"`

	// HistorySize caps how many prior messages accompany a synchronous
	// chat request.
	HistorySize int `env:"CHAT_HISTORY_SIZE" envDefault:"12"`
}

// Sanitize applies guardrails to chat configuration.
func (c *ChatConfig) Sanitize() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.HistorySize <= 0 {
		c.HistorySize = DefaultHistorySize
	}
}
