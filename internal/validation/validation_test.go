package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/bcnelson/sentinelguard/internal/domain"
)

func TestValidateInstanceID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"usb device", `USB\VID_1234&PID_5678\0001`, false},
		{"root hub", `USB\ROOT_HUB30\4&2A3B4C5D&0&0`, false},
		{"contains quote", `USB\VID_1'2`, false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"newline", "USB\\VID\n1", true},
		{"nul byte", "USB\x00", true},
		{"too long", strings.Repeat("A", 513), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInstanceID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInstanceID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLevel(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{"INFO", false},
		{"WARN", false},
		{"BLOCK", false},
		{"ERROR", false},
		{"info", false},
		{"DEBUG", false},
		{"USB_POLICY", false},
		{"", true},
		{"LOUD NOISE", true},
		{"WARN\n", true},
		{"LEVEL_THAT_IS_TOO_LONG", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			err := ValidateLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLevel(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePort(t *testing.T) {
	for _, p := range []int{1, 22, 445, 65535} {
		if err := ValidatePort(p); err != nil {
			t.Errorf("ValidatePort(%d) unexpected error: %v", p, err)
		}
	}
	for _, p := range []int{0, -1, 65536} {
		if err := ValidatePort(p); err == nil {
			t.Errorf("ValidatePort(%d) expected error", p)
		}
	}

	tests := []struct {
		port    string
		wantErr bool
	}{
		{"445", false},
		{"65535", false},
		{"0", true},
		{"65536", true},
		{"80-443", true},
		{"abc", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.port, func(t *testing.T) {
			err := ValidatePortString(tt.port)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePortString(%q) error = %v, wantErr %v", tt.port, err, tt.wantErr)
			}
		})
	}
}

func TestValidateProtocol(t *testing.T) {
	if err := ValidateProtocol("TCP"); err != nil {
		t.Errorf("TCP: %v", err)
	}
	if err := ValidateProtocol("UDP"); err != nil {
		t.Errorf("UDP: %v", err)
	}
	for _, p := range []string{"tcp", "ICMP", ""} {
		if err := ValidateProtocol(p); err == nil {
			t.Errorf("ValidateProtocol(%q) expected error", p)
		}
	}
}

func TestValidateServiceName(t *testing.T) {
	tests := []struct {
		name    string
		service string
		wantErr bool
	}{
		{"windows update", "wuauserv", false},
		{"mixed case", "WinDefend", false},
		{"per-user service", "CDPUserSvc_1a2b3", false},
		{"dollar", "MSSQL$SQLEXPRESS", false},
		{"empty", "", true},
		{"space", "Print Spooler", true},
		{"quote", "Spooler'", true},
		{"semicolon", "a;b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateServiceName(tt.service)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateServiceName(%q) error = %v, wantErr %v", tt.service, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRuleName(t *testing.T) {
	if err := ValidateRuleName("Block SMB (445)"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateRuleName(""); err == nil {
		t.Error("expected error for empty rule name")
	}
	if err := ValidateRuleName("a\tb"); err == nil {
		t.Error("expected error for control character")
	}
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	if err := v.Struct(domain.AuthorizeDeviceRequest{InstanceID: `USB\VID_1234`, FriendlyName: "Drive"}); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	err := v.Struct(domain.AppendEventRequest{Level: "LOUD NOISE", Message: ""})
	var errs Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected Errors, got %T: %v", err, err)
	}
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
	if errs[0].Field != "level" || errs[1].Field != "message" {
		t.Errorf("unexpected fields: %s, %s", errs[0].Field, errs[1].Field)
	}
	if errs[0].Rule != "auditlevel" || errs[1].Rule != "required" {
		t.Errorf("unexpected rules: %s, %s", errs[0].Rule, errs[1].Rule)
	}
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Error("validation errors should match ErrInvalidInput")
	}

	err = v.Struct(domain.BlockPortRequest{Port: 70000, Protocol: "ICMP", RuleName: "x"})
	if !errors.As(err, &errs) || len(errs) != 2 {
		t.Fatalf("expected 2 errors for block port request, got %v", err)
	}

	if err := v.Struct(domain.ServiceActionRequest{Name: "Spooler"}); err != nil {
		t.Errorf("valid service rejected: %v", err)
	}
	if err := v.Struct(domain.ServiceActionRequest{Name: "Spooler; rm"}); err == nil {
		t.Error("expected invalid service name error")
	}
}

func TestErrors(t *testing.T) {
	errs := Errors{
		{Field: "port", Rule: "max", Value: "70000", Message: "must be at most 65535"},
		{Field: "protocol", Rule: "oneof", Value: "ICMP", Message: "must be one of: TCP UDP"},
	}
	if got := errs.Error(); got != "port: must be at most 65535; protocol: must be one of: TCP UDP" {
		t.Errorf("unexpected message: %s", got)
	}

	long := strings.Repeat("A", 600)
	one := FieldInvalid("instance_id", long, ValidateInstanceID(long))
	if len(one) != 1 || one[0].Rule != "custom" {
		t.Fatalf("unexpected errors: %+v", one)
	}
	if got := len([]rune(one[0].Value)); got != maxEchoedValue+3 {
		t.Errorf("expected echoed value to be shortened, got %d runes", got)
	}
	if !errors.Is(one, domain.ErrInvalidInput) {
		t.Error("FieldInvalid should match ErrInvalidInput")
	}
}
