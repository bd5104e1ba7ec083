package models

import (
	"fmt"
	"strings"
)

// Enablement is the resolved value of the simulation tracking switch.
// The zero value is EnablementUnset.
type Enablement int

const (
	EnablementUnset Enablement = iota
	EnablementEnabled
	EnablementDisabled
)

func (e Enablement) String() string {
	switch e {
	case EnablementEnabled:
		return "enabled"
	case EnablementDisabled:
		return "disabled"
	default:
		return "unset"
	}
}

// ParseEnablement converts a flag or environment value into an Enablement.
// An empty string means the setting was never configured.
func ParseEnablement(s string) (Enablement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return EnablementUnset, nil
	case "true", "yes", "on", "1":
		return EnablementEnabled, nil
	case "false", "no", "off", "0":
		return EnablementDisabled, nil
	default:
		return EnablementUnset, fmt.Errorf("invalid enablement value %q: must be true or false", s)
	}
}

// EnablementFromBool maps an optional config value onto the tri-state.
func EnablementFromBool(b *bool) Enablement {
	if b == nil {
		return EnablementUnset
	}
	if *b {
		return EnablementEnabled
	}
	return EnablementDisabled
}
