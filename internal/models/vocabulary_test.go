package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadVocabulary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocabulary.yaml")
	content := `
symptoms:
  - Fatigue
  - Jaundice
risk_factors:
  - Alcohol abuse
  - Obesity
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	vocab, err := LoadVocabulary(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fatigue", "Jaundice"}, vocab.Symptoms)
	assert.Empty(t, vocab.InvalidSymptoms([]string{"Fatigue"}))
	assert.Equal(t, []string{"Headache"}, vocab.InvalidSymptoms([]string{"Fatigue", "Headache"}))
	assert.Equal(t, []string{"Smoking"}, vocab.InvalidRiskFactors([]string{"Obesity", "Smoking"}))
}

func TestLoadVocabularyRejectsEmptyCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocabulary.yaml")
	require.NoError(t, os.WriteFile(path, []byte("symptoms: []\nrisk_factors: []\n"), 0o644))

	_, err := LoadVocabulary(path)
	assert.Error(t, err)
}

func TestLoadVocabularyMissingFile(t *testing.T) {
	_, err := LoadVocabulary(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNormalizeSet(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil stays empty", nil, []string{}},
		{"trims whitespace", []string{" Fatigue ", "Nausea"}, []string{"Fatigue", "Nausea"}},
		{"drops empties", []string{"", "  ", "Fatigue"}, []string{"Fatigue"}},
		{"collapses duplicates keeping order", []string{"Nausea", "Fatigue", "Nausea"}, []string{"Nausea", "Fatigue"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSet(tt.in))
		})
	}
}
