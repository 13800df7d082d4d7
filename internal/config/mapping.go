package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openclinic-tools/dhisync/internal/model"
)

// LoadMapping reads and validates the report mapping catalog. A
// missing file yields an empty catalog rather than an error; exports
// against it fail later with a no-rules diagnostic, which is the more
// useful message.
func (c *Config) LoadMapping() (*model.MappingCatalog, error) {
	data, err := os.ReadFile(c.MappingPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &model.MappingCatalog{Reports: map[string]*model.Report{}}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", mappingFileName, err)
	}

	var catalog model.MappingCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", mappingFileName, err)
	}
	if catalog.Reports == nil {
		catalog.Reports = map[string]*model.Report{}
	}

	for name, report := range catalog.Reports {
		if report == nil {
			catalog.Reports[name] = &model.Report{Name: name}
			continue
		}
		report.Name = name
		for i, rule := range report.Mappings {
			if err := rule.Validate(); err != nil {
				return nil, fmt.Errorf("%s: report %q rule %d: %w", mappingFileName, name, i, err)
			}
		}
	}

	return &catalog, nil
}
