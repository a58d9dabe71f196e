package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/playmark/playmark/constant"
	"github.com/playmark/playmark/filesystem"
	"github.com/playmark/playmark/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer maps dotted keys to environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup applies defaults, binds environment variables and reads playmark.toml when it exists.
func Setup() error {
	viper.SetConfigName(constant.Playmark)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Playmark)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	return nil
}

// Path returns the location of the config file written by Write.
func Path() string {
	return filepath.Join(where.Config(), constant.Playmark+".toml")
}

// Write persists the current settings to the config file.
func Write() error {
	return viper.WriteConfigAs(Path())
}
