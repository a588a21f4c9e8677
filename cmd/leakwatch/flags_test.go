package main

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected AppFlags
	}{
		{
			name:     "long flags",
			args:     []string{"-config", "cfg.yaml", "-mode", "scan", "-url", "https://a.example.com"},
			expected: AppFlags{GlobalConfigFile: "cfg.yaml", Mode: "scan", TargetURL: "https://a.example.com"},
		},
		{
			name:     "aliases",
			args:     []string{"-c", "cfg.yaml", "-m", "list", "-f", "bundle.js", "-i", "targets.txt"},
			expected: AppFlags{GlobalConfigFile: "cfg.yaml", Mode: "list", ContentFile: "bundle.js", TargetsFile: "targets.txt"},
		},
		{
			name:     "long flag wins over alias",
			args:     []string{"-mode", "revalidate", "-m", "scan"},
			expected: AppFlags{Mode: "revalidate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags, err := ParseFlags(tt.args, io.Discard)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, flags)
		})
	}

	_, err := ParseFlags([]string{"-unknown"}, io.Discard)
	assert.Error(t, err)
}

func TestAppFlags_HasTargets(t *testing.T) {
	assert.False(t, AppFlags{Mode: "scan"}.HasTargets())
	assert.True(t, AppFlags{TargetURL: "https://a.example.com"}.HasTargets())
	assert.True(t, AppFlags{ContentFile: "bundle.js"}.HasTargets())
	assert.True(t, AppFlags{TargetsFile: "targets.txt"}.HasTargets())
}
