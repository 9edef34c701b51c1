package config

import (
	_ "embed"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

const (
	ConfigurationName = "config.yaml"
	AppLogName        = "picosh.log"
)

// Configuration holds the user-tunable shell settings.
type Configuration struct {
	configFs afero.Fs

	// Prompt is printed before each input line.
	Prompt string `json:"prompt"`

	// MaxLineLength bounds the raw input line in bytes.
	MaxLineLength int `json:"max_line_length" validate:"gt=0"`

	// MaxArgs bounds the number of arguments per command.
	MaxArgs int `json:"max_args" validate:"gt=0,lte=4096"`

	// LogLevel controls the app log verbosity.
	LogLevel string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// LogDisabled turns the app log off entirely.
	LogDisabled bool `json:"log_disabled"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		c.configFs = afero.NewOsFs()
	}
	return c.configFs
}

// OpenAppLog opens the application log in an append only state.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
