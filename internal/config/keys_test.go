package config

import (
	"errors"
	"testing"
)

func TestGetAPIKey(t *testing.T) {
	t.Run("env takes precedence", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant-from-env")
		cfg := Default()
		cfg.Anthropic.APIKey = "sk-ant-from-config"

		key, err := GetAPIKey(cfg)
		if err != nil {
			t.Fatal(err)
		}
		if key != "sk-ant-from-env" {
			t.Errorf("key = %q, want env value", key)
		}
	})

	t.Run("config fallback", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		cfg := Default()
		cfg.Anthropic.APIKey = "sk-ant-from-config"

		key, err := GetAPIKey(cfg)
		if err != nil {
			t.Fatal(err)
		}
		if key != "sk-ant-from-config" {
			t.Errorf("key = %q, want config value", key)
		}
	})

	t.Run("unset", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		if _, err := GetAPIKey(Default()); !errors.Is(err, ErrNoAPIKey) {
			t.Errorf("err = %v, want ErrNoAPIKey", err)
		}
	})

	t.Run("unexpanded reference rejected", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		cfg := Default()
		cfg.Anthropic.APIKey = "${MISSING_VAR}"

		if _, err := GetAPIKey(cfg); !errors.Is(err, ErrNoAPIKey) {
			t.Errorf("err = %v, want ErrNoAPIKey", err)
		}
	})
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", "(not set)"},
		{"short", "***"},
		{"sk-ant-api03-abcdefgh1234", "sk-ant-...1234"},
	}
	for _, tt := range tests {
		if got := MaskAPIKey(tt.key); got != tt.want {
			t.Errorf("MaskAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
