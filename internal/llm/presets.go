package llm

// ProviderPreset is a known backend configuration template.
type ProviderPreset struct {
	Name         string
	Type         string
	BaseURL      string
	DefaultModel string
	KeyRequired  bool
	Notes        string
}

var providerPresets = map[string]ProviderPreset{
	"ollama": {
		Name:         "Ollama",
		Type:         "openai_compatible",
		BaseURL:      "http://localhost:11434/v1",
		DefaultModel: "llama3.2",
		Notes:        "Local LLM via Ollama. Install from https://ollama.ai",
	},
	"lmstudio": {
		Name:         "LM Studio",
		Type:         "openai_compatible",
		BaseURL:      "http://localhost:1234/v1",
		DefaultModel: "local-model",
		Notes:        "Local LLM via LM Studio. Download from https://lmstudio.ai",
	},
	"openai": {
		Name:         "OpenAI",
		Type:         "openai_compatible",
		BaseURL:      "https://api.openai.com/v1",
		DefaultModel: "gpt-4o",
		KeyRequired:  true,
		Notes:        "OpenAI API. Get key at https://platform.openai.com/api-keys",
	},
	"anthropic": {
		Name:         "Anthropic",
		Type:         "anthropic",
		BaseURL:      "https://api.anthropic.com",
		DefaultModel: "claude-3-5-sonnet-20241022",
		KeyRequired:  true,
		Notes:        "Anthropic Claude API. Get key at https://console.anthropic.com",
	},
	"groq": {
		Name:         "Groq",
		Type:         "openai_compatible",
		BaseURL:      "https://api.groq.com/openai/v1",
		DefaultModel: "llama-3.3-70b-versatile",
		KeyRequired:  true,
		Notes:        "Groq fast inference. Get key at https://console.groq.com",
	},
	"openrouter": {
		Name:         "OpenRouter",
		Type:         "openai_compatible",
		BaseURL:      "https://openrouter.ai/api/v1",
		DefaultModel: "anthropic/claude-3.5-sonnet",
		KeyRequired:  true,
		Notes:        "OpenRouter unified API. Get key at https://openrouter.ai/keys",
	},
	"deepseek": {
		Name:         "DeepSeek",
		Type:         "openai_compatible",
		BaseURL:      "https://api.deepseek.com/v1",
		DefaultModel: "deepseek-chat",
		KeyRequired:  true,
		Notes:        "DeepSeek API. Get key at https://platform.deepseek.com",
	},
	"custom": {
		Name:  "Custom OpenAI-Compatible",
		Type:  "openai_compatible",
		Notes: "Any OpenAI-compatible API endpoint",
	},
}

// PresetNames lists the known provider presets.
func PresetNames() []string {
	return []string{"ollama", "lmstudio", "openai", "anthropic", "groq", "openrouter", "deepseek", "custom"}
}

// GetPreset returns the preset for a provider name.
func GetPreset(name string) (ProviderPreset, bool) {
	p, ok := providerPresets[name]
	return p, ok
}
