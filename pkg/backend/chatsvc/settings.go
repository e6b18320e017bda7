package chatsvc

import "github.com/chatoptimize/chatgraph/pkg/backend/provider"

// resolvedSettings is the provider call configuration after merging node
// widgets with the attached config record. The record wins wherever it sets
// a field.
type resolvedSettings struct {
	providerName string
	request      provider.Request
}

func (s *Service) resolveSettings(req Request) resolvedSettings {
	settings := resolvedSettings{
		providerName: provider.NameOllama,
		request: provider.Request{
			BaseURL: req.BaseURL,
			Model:   req.ModelName,
		},
	}

	cfg := req.Config
	if cfg == nil {
		return settings
	}

	if v, ok := stringField(cfg, "provider"); ok {
		settings.providerName = v
	}

	if v, ok := stringField(cfg, "model_name"); ok {
		settings.request.Model = v
	}

	if v, ok := stringField(cfg, "base_url"); ok {
		settings.request.BaseURL = v
	}

	if v, ok := stringField(cfg, "hf_token"); ok {
		settings.request.Token = v
	}

	// api_key is the generic credential slot; hf_token wins when both are
	// set.
	if settings.request.Token == "" {
		if v, ok := stringField(cfg, "api_key"); ok {
			settings.request.Token = v
		}
	}

	if v, ok := stringField(cfg, "hf_api_url"); ok {
		settings.request.APIURL = v
	}

	if v, ok := floatField(cfg, "temperature"); ok {
		settings.request.Temperature = &v
	}

	if v, ok := floatField(cfg, "top_p"); ok {
		settings.request.TopP = &v
	}

	if v, ok := floatField(cfg, "max_new_tokens"); ok {
		tokens := int(v)
		settings.request.MaxNewTokens = &tokens
	}

	return settings
}

func stringField(cfg map[string]any, key string) (string, bool) {
	v, ok := cfg[key].(string)
	if !ok || v == "" {
		return "", false
	}

	return v, true
}

// floatField accepts both float64 (JSON numbers) and int (in-process
// records).
func floatField(cfg map[string]any, key string) (float64, bool) {
	switch v := cfg[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
