package monitor

// Config defines one monitor: a search term watched on behalf of an owner
// account. One YAML file per monitor; the name comes from the filename.
type Config struct {
	Name      string         // Derived from filename (without .yml extension)
	Term      string         `yaml:"term"`
	Owner     string         `yaml:"owner"`
	RulesFile string         `yaml:"rules_file"` // optional per-monitor keyword rules
	Settings  ConfigSettings `yaml:"settings"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	MaxItems        int  `yaml:"max_items"`
	Timeout         int  `yaml:"timeout"`          // seconds
	ExtractContent  bool `yaml:"extract_content"`  // enable full-article extraction
}
