package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mtelnov/code2llm/internal/utils"
)

// ConfigFileName is the name of the optional configuration file looked up in
// the home directory and the working directory.
const ConfigFileName = ".code2llm.yaml"

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds defaults that flags may override.
type ApplicationConfiguration struct {
	Bundle BundleConfiguration `mapstructure:"bundle"`
}

// BundleConfiguration defines bundling defaults.
type BundleConfiguration struct {
	Exclude        []string `mapstructure:"exclude"`
	Format         string   `mapstructure:"format"`
	SystemPrompt   *string  `mapstructure:"system_prompt"`
	Tokens         *bool    `mapstructure:"tokens"`
	Model          string   `mapstructure:"model"`
	Clipboard      *bool    `mapstructure:"clipboard"`
	FollowSymlinks *bool    `mapstructure:"follow_symlinks"`
}

// Merge overlays the receiver with values set in overlay. Slice values append,
// scalar values replace when set, pointer values replace when non-nil.
func (base ApplicationConfiguration) Merge(overlay ApplicationConfiguration) ApplicationConfiguration {
	merged := base
	merged.Bundle.Exclude = append(merged.Bundle.Exclude, overlay.Bundle.Exclude...)
	if overlay.Bundle.Format != "" {
		merged.Bundle.Format = overlay.Bundle.Format
	}
	if overlay.Bundle.SystemPrompt != nil {
		merged.Bundle.SystemPrompt = overlay.Bundle.SystemPrompt
	}
	if overlay.Bundle.Tokens != nil {
		merged.Bundle.Tokens = overlay.Bundle.Tokens
	}
	if overlay.Bundle.Model != "" {
		merged.Bundle.Model = overlay.Bundle.Model
	}
	if overlay.Bundle.Clipboard != nil {
		merged.Bundle.Clipboard = overlay.Bundle.Clipboard
	}
	if overlay.Bundle.FollowSymlinks != nil {
		merged.Bundle.FollowSymlinks = overlay.Bundle.FollowSymlinks
	}
	return merged
}

// LoadApplicationConfiguration loads configuration from the global file in the
// home directory and the local file in the working directory; local values
// override global ones.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, homeError := os.UserHomeDir(); homeError == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, ConfigFileName)
		globalConfiguration, loadError := loadConfigurationFromPath(globalPath)
		if loadError != nil {
			return ApplicationConfiguration{}, loadError
		}
		merged = merged.Merge(globalConfiguration)
	}

	localPath := options.ExplicitFilePath
	if localPath == "" {
		localPath = filepath.Join(workingDirectory, ConfigFileName)
	} else if !filepath.IsAbs(localPath) {
		localPath = filepath.Join(workingDirectory, localPath)
	}
	localConfiguration, loadError := loadConfigurationFromPath(localPath)
	if loadError != nil {
		return ApplicationConfiguration{}, loadError
	}
	merged = merged.Merge(localConfiguration)

	merged.Bundle.Exclude = utils.DeduplicatePatterns(merged.Bundle.Exclude)
	return merged, nil
}

// loadConfigurationFromPath reads one configuration file. A missing file is
// not an error; a malformed one is.
func loadConfigurationFromPath(configurationFilePath string) (ApplicationConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigFile(configurationFilePath)
	viperInstance.SetConfigType("yaml")

	if readError := viperInstance.ReadInConfig(); readError != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if errors.As(readError, &configFileNotFound) || os.IsNotExist(readError) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("reading configuration %s: %w", configurationFilePath, readError)
	}

	var configuration ApplicationConfiguration
	if unmarshalError := viperInstance.Unmarshal(&configuration); unmarshalError != nil {
		return ApplicationConfiguration{}, fmt.Errorf("parsing configuration %s: %w", configurationFilePath, unmarshalError)
	}
	return configuration, nil
}
