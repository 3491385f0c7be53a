package main

import (
	"testing"

	"shipledger/backend/internal/config"
)

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: "short"})
	if err == nil {
		t.Fatalf("expected weak security config to be rejected")
	}

	err = validateSecurityConfig(config.Config{AuthSecret: "0123456789abcdef0123456789abcdef", SeedAdminPassword: "admin"})
	if err == nil {
		t.Fatalf("expected short seed password to be rejected")
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: "0123456789abcdef0123456789abcdef", SeedManagerPassword: "k3lm-9vpx"})
	if err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}
