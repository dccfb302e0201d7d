package strategy

import (
	"fmt"
)

// New builds a generator from a type tag and its raw config, as carried in
// API requests and job files. Numeric values arrive as float64 from JSON.
func New(strategyType string, config map[string]interface{}) (Generator, error) {
	switch strategyType {
	case "sma_cross":
		fast, ok1 := toInt(config["fast_window"])
		slow, ok2 := toInt(config["slow_window"])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("invalid config for sma_cross: need fast_window and slow_window")
		}
		return NewSMACross(fast, slow)
	default:
		return nil, fmt.Errorf("unknown strategy type: %s", strategyType)
	}
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
