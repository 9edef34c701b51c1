package config

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load loads the configuration from the directory.
func Load(fsys afero.Fs, path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	configContents, err := afero.ReadFile(fsys, filepath.Join(path, ConfigurationName))
	if err != nil {
		return nil, err
	}
	var out Configuration
	if err := yaml.UnmarshalStrict(configContents, &out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	out.configFs = afero.NewBasePathFs(fsys, path)
	return &out, nil
}

// Default returns the embedded configuration, used when no config.yaml
// exists. Its app log lands in the current directory.
func Default() *Configuration {
	return defaultConfig()
}

// Initialize writes the default configuration into the directory. Existing
// files are left alone so re-running is safe.
func Initialize(fsys afero.Fs, path string, logger *log.Logger) (*Configuration, error) {
	configPath := filepath.Join(path, ConfigurationName)

	exists, err := afero.Exists(fsys, configPath)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Printf("%s already exists, leaving it alone", configPath)
		return Load(fsys, path)
	}

	if err := afero.WriteFile(fsys, configPath, defaultConfigData, 0600); err != nil {
		return nil, fmt.Errorf("couldn't write %s: %v", configPath, err)
	}
	logger.Printf("wrote %s", configPath)

	return Load(fsys, path)
}
