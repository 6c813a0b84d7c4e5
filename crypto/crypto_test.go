// SPDX-License-Identifier: GPL-3.0-only

package crypto

import (
	"strings"
	"testing"
)

func TestGenerateRandomStringHex(t *testing.T) {
	s, err := GenerateRandomString("evt_", 8, "hex")
	if err != nil {
		t.Fatalf("GenerateRandomString failed: %v", err)
	}
	if !strings.HasPrefix(s, "evt_") {
		t.Errorf("Expected prefix evt_, got %s", s)
	}
	if len(s) != len("evt_")+16 {
		t.Errorf("Expected 16 hex chars after prefix, got %d", len(s)-len("evt_"))
	}
}

func TestGenerateRandomStringUnique(t *testing.T) {
	a, err := GenerateRandomString("", 16, "hex")
	if err != nil {
		t.Fatalf("GenerateRandomString failed: %v", err)
	}
	b, err := GenerateRandomString("", 16, "hex")
	if err != nil {
		t.Fatalf("GenerateRandomString failed: %v", err)
	}
	if a == b {
		t.Error("Expected two random strings to differ")
	}
}

func TestGenerateRandomStringUnsupportedEncoding(t *testing.T) {
	if _, err := GenerateRandomString("", 8, "base32"); err == nil {
		t.Error("Expected error for unsupported encoding")
	}
}
