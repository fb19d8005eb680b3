package server

import "time"

// MCP arguments arrive as decoded JSON, so numbers are float64.

func stringParam(params map[string]interface{}, key, def string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return def
}

func intParam(params map[string]interface{}, key string, def int) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

func boolParam(params map[string]interface{}, key string, def bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return def
}

// boolPtrParam returns nil when key is absent.
func boolPtrParam(params map[string]interface{}, key string) *bool {
	if v, ok := params[key].(bool); ok {
		return &v
	}
	return nil
}

func floatParam(params map[string]interface{}, key string, def float64) float64 {
	if v, ok := params[key].(float64); ok {
		return v
	}
	return def
}

// durationParam reads a millisecond count. Zero selects the wait's default.
func durationParam(params map[string]interface{}, key string) time.Duration {
	return time.Duration(intParam(params, key, 0)) * time.Millisecond
}
