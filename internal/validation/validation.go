// Package validation provides validation functions for device identities,
// audit levels and the arguments of host commands.
package validation

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	maxLevelLen      = 16
	maxInstanceIDLen = 512
	maxRuleNameLen   = 256
	maxServiceLen    = 256
)

// isAlpha returns true if the byte is an ASCII letter.
func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// isNum returns true if the byte is an ASCII digit.
func isNum(b byte) bool {
	return b >= '0' && b <= '9'
}

// isAlphaNum returns true if the byte is an ASCII letter or digit.
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isNum(b)
}

// validatePrintable rejects empty, oversized or control-character values.
func validatePrintable(value, entityType string, maxLen int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s must not be empty", entityType)
	}
	if len(value) > maxLen {
		return fmt.Errorf("%s must be at most %d characters", entityType, maxLen)
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return fmt.Errorf("%s must not contain control characters", entityType)
		}
	}
	return nil
}

// ValidateInstanceID validates a device instance identity.
// Identities are OS-assigned (e.g. USB\VID_1234&PID_5678\0001), so only
// emptiness, length and control characters are checked.
func ValidateInstanceID(id string) error {
	return validatePrintable(id, "instance ID", maxInstanceIDLen)
}

// ValidateLevel validates an audit level. Levels are open: besides the
// four the system emits, any single word of letters, digits and '_' is
// accepted, in any case.
func ValidateLevel(level string) error {
	if level == "" {
		return fmt.Errorf("level must not be empty")
	}
	if len(level) > maxLevelLen {
		return fmt.Errorf("level must be at most %d characters", maxLevelLen)
	}
	for _, b := range []byte(level) {
		if !isAlphaNum(b) && b != '_' {
			return fmt.Errorf("invalid level: %q (letters, numbers and '_' only)", level)
		}
	}
	return nil
}

// ValidatePort validates a port number.
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port number: %d", port)
	}
	return nil
}

// ValidatePortString validates a port given as text.
func ValidatePortString(port string) error {
	if !isValidPortNumber(port) {
		return fmt.Errorf("invalid port number: %s", port)
	}
	return nil
}

// isValidPortNumber checks if a string is a valid port number (1-65535).
func isValidPortNumber(s string) bool {
	if s == "" {
		return false
	}
	num := 0
	for _, b := range []byte(s) {
		if !isNum(b) {
			return false
		}
		num = num*10 + int(b-'0')
		if num > 65535 {
			return false
		}
	}
	return num > 0
}

// ValidateProtocol validates a firewall protocol.
func ValidateProtocol(protocol string) error {
	switch protocol {
	case "TCP", "UDP":
		return nil
	default:
		return fmt.Errorf("protocol must be TCP or UDP, got %q", protocol)
	}
}

// ValidateRuleName validates a firewall rule display name.
func ValidateRuleName(name string) error {
	return validatePrintable(name, "rule name", maxRuleNameLen)
}

// ValidateServiceName validates a Windows service short name.
// Service names contain letters, numbers, '_', '-', '.' or '$'.
func ValidateServiceName(name string) error {
	if name == "" {
		return fmt.Errorf("service name must not be empty")
	}
	if len(name) > maxServiceLen {
		return fmt.Errorf("service name must be at most %d characters", maxServiceLen)
	}
	for _, b := range []byte(name) {
		if !isAlphaNum(b) && b != '_' && b != '-' && b != '.' && b != '$' {
			return fmt.Errorf("service names can only contain letters, numbers, '_', '-', '.' or '$'")
		}
	}
	return nil
}

// ValidateProcessID validates a process ID.
func ValidateProcessID(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("process ID must be positive, got %d", pid)
	}
	return nil
}
