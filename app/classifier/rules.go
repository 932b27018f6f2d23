package classifier

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules maps each classification label to its keyword set. Matching is
// substring-based against the lowercased item text, so keywords must be
// lowercase.
type Rules struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
	Urgent   []string `yaml:"urgent"`
}

// DefaultRules returns the built-in Brazilian Portuguese keyword sets tuned
// for political coverage.
func DefaultRules() Rules {
	return Rules{
		Positive: []string{
			"inaugura", "conquista", "aprova", "melhoria", "crescimento",
			"sucesso", "parceria", "benefício", "avanço", "elogia", "destaque",
		},
		Negative: []string{
			"crise", "escândalo", "denúncia", "atraso", "problema", "falha",
			"erro", "crítica", "protesto", "acusação", "investigação",
		},
		Urgent: []string{
			"urgente", "grave", "alerta", "emergência", "desastre", "crime",
		},
	}
}

// LoadRules reads a keyword rules file. Any label left empty in the file
// falls back to the built-in set for that label, so a file can override a
// single list without restating the others.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("failed to parse rules file: %w", err)
	}

	defaults := DefaultRules()
	if len(rules.Positive) == 0 {
		rules.Positive = defaults.Positive
	}
	if len(rules.Negative) == 0 {
		rules.Negative = defaults.Negative
	}
	if len(rules.Urgent) == 0 {
		rules.Urgent = defaults.Urgent
	}

	return rules, nil
}
