package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/delimtab/pkg/errors"
)

// Load reads a YAML or TOML file into config, chosen by extension. Files
// ending in .toml are TOML, everything else is YAML. ${VAR} references are
// replaced with environment values before parsing.
func Load(filePath string, config interface{}) error {
	data, err := os.ReadFile(filePath) //nolint:gosec // G304: File path is controlled by caller
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to read config file").
			WithDetail("path", filePath)
	}

	content := []byte(substituteEnvVars(string(data)))

	if isTOML(filePath) {
		if _, err := toml.Decode(string(content), config); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse TOML").
				WithDetail("path", filePath)
		}
		return nil
	}

	if err := yaml.Unmarshal(content, config); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse YAML").
			WithDetail("path", filePath)
	}
	return nil
}

// Save writes config to filePath as YAML or TOML, chosen by extension.
func Save(filePath string, config interface{}) error {
	var data []byte
	if isTOML(filePath) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(config); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "failed to marshal TOML")
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(config); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "failed to marshal YAML")
		}
	}

	if err := os.WriteFile(filePath, data, 0o644); err != nil { //nolint:gosec
		return errors.Wrap(err, errors.ErrorTypeConfig, fmt.Sprintf("failed to write config file %s", filePath))
	}
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
func substituteEnvVars(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		b.WriteString(content[:start])
		b.WriteString(os.Getenv(content[start+2 : end]))
		content = content[end+1:]
	}
	b.WriteString(content)
	return b.String()
}
