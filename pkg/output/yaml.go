package output

import (
	"github.com/ajdepersio/ConfigUsageReport/pkg/logger"
	"github.com/ajdepersio/ConfigUsageReport/pkg/report"
	"gopkg.in/yaml.v3"
)

func (f *formatter) formatYAML(table *report.Table) (string, error) {
	f.log.Debug("Formatting YAML output")

	// Same document as the JSON output
	bytes, err := yaml.Marshal(f.buildDocument(table))
	if err != nil {
		f.log.WithFields(logger.Fields{
			"error": err,
		}).Error("Failed to marshal YAML")
		return "", err
	}

	return string(bytes), nil
}
