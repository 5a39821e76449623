package extract

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/btservant/tbpcorpus/catalog"
)

// Config is the corpus configuration file: classification rules for
// the extractor plus path redirections for the download stage. Both
// tables are ordered, first match wins.
type Config struct {
	Name                string              `json:"name"`
	CategorizationRules []*Rule             `json:"categorization_rules"`
	PathRedirections    []*catalog.Redirect `json:"path_redirections"`
}

// LoadConfig reads and validates the configuration file. A missing
// file yields an empty config so every table falls back to defaults;
// an unparseable file or an invalid table is a fatal configuration
// error.
func LoadConfig(path string) (*Config, Rules, catalog.Redirects, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil, nil, nil
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	rules, err := CompileRules(cfg.CategorizationRules)
	if err != nil {
		return nil, nil, nil, err
	}
	redirects, err := catalog.CompileRedirects(cfg.PathRedirections)
	if err != nil {
		return nil, nil, nil, err
	}
	return &cfg, rules, redirects, nil
}
