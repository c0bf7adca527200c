package schemas

const (
	DefaultGeminiBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel          = "gemini-2.5-flash-preview-05-20"
	DefaultAPIKeyEnv            = "GEMINI_API_KEY"
	DefaultMaxConnsPerHost      = 512
	DefaultRequestTimeoutInSecs = 0 // no component-level timeout
)

// NetworkConfig controls the outbound connection to the upstream API.
type NetworkConfig struct {
	BaseURL                 string `json:"base_url,omitempty"`
	RequestTimeoutInSeconds int    `json:"request_timeout_in_seconds"`
	MaxConnsPerHost         int    `json:"max_conns_per_host"`
}

// ProxyType is the kind of outbound proxy used to reach the upstream API.
type ProxyType string

const (
	NoProxy     ProxyType = "none"
	HttpProxy   ProxyType = "http"
	Socks5Proxy ProxyType = "socks5"
	EnvProxy    ProxyType = "environment"
)

// OutboundProxyConfig holds the outbound proxy settings.
type OutboundProxyConfig struct {
	Type     ProxyType `json:"type"`
	URL      string    `json:"url"`
	Username string    `json:"username"`
	Password string    `json:"password"`
}

// ProviderConfig configures the Gemini provider.
type ProviderConfig struct {
	Model         string               `json:"model"`
	NetworkConfig NetworkConfig        `json:"network_config"`
	ProxyConfig   *OutboundProxyConfig `json:"proxy_config,omitempty"`
}

// CheckAndSetDefaults fills unset fields with their defaults.
func (config *ProviderConfig) CheckAndSetDefaults() {
	if config.Model == "" {
		config.Model = DefaultGeminiModel
	}
	if config.NetworkConfig.BaseURL == "" {
		config.NetworkConfig.BaseURL = DefaultGeminiBaseURL
	}
	if config.NetworkConfig.MaxConnsPerHost <= 0 {
		config.NetworkConfig.MaxConnsPerHost = DefaultMaxConnsPerHost
	}
	if config.NetworkConfig.RequestTimeoutInSeconds < 0 {
		config.NetworkConfig.RequestTimeoutInSeconds = DefaultRequestTimeoutInSecs
	}
}

// ProxyConfig is everything needed to build a Proxy.
type ProxyConfig struct {
	Account        Account
	ProviderConfig ProviderConfig
	Plugins        []Plugin
	Logger         Logger
}
