package models

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vocabulary is the single shared enumeration of reportable symptoms and
// risk factors. Validation and the client form both consume this catalog,
// so the two can never drift apart.
type Vocabulary struct {
	Symptoms    []string `yaml:"symptoms"`
	RiskFactors []string `yaml:"risk_factors"`

	symptomSet    map[string]struct{}
	riskFactorSet map[string]struct{}
}

// NewVocabulary builds a catalog from in-memory lists.
func NewVocabulary(symptoms, riskFactors []string) *Vocabulary {
	return &Vocabulary{
		Symptoms:      symptoms,
		RiskFactors:   riskFactors,
		symptomSet:    toSet(symptoms),
		riskFactorSet: toSet(riskFactors),
	}
}

// LoadVocabulary reads and parses the vocabulary.yaml file.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	var vocab Vocabulary
	if err := yaml.Unmarshal(data, &vocab); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vocabulary YAML: %w", err)
	}
	if len(vocab.Symptoms) == 0 || len(vocab.RiskFactors) == 0 {
		return nil, fmt.Errorf("vocabulary file %s is missing symptoms or risk factors", path)
	}

	vocab.symptomSet = toSet(vocab.Symptoms)
	vocab.riskFactorSet = toSet(vocab.RiskFactors)
	return &vocab, nil
}

// InvalidSymptoms returns the entries that are not part of the catalog.
func (v *Vocabulary) InvalidSymptoms(symptoms []string) []string {
	return missingFrom(v.symptomSet, symptoms)
}

// InvalidRiskFactors returns the entries that are not part of the catalog.
func (v *Vocabulary) InvalidRiskFactors(riskFactors []string) []string {
	return missingFrom(v.riskFactorSet, riskFactors)
}

// NormalizeSet trims entries, drops empties and collapses duplicates
// while preserving first-seen order.
func NormalizeSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, val := range values {
		val = strings.TrimSpace(val)
		if val == "" {
			continue
		}
		if _, dup := seen[val]; dup {
			continue
		}
		seen[val] = struct{}{}
		out = append(out, val)
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, val := range values {
		set[val] = struct{}{}
	}
	return set
}

func missingFrom(set map[string]struct{}, values []string) []string {
	var invalid []string
	for _, val := range values {
		if _, ok := set[val]; !ok {
			invalid = append(invalid, val)
		}
	}
	return invalid
}
