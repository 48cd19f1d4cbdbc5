package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/alimgiray/glscope/internal/models"
)

// EnvPrefix is the prefix of environment variables overriding analysis keys
const EnvPrefix = "GLSCOPE"

// LoadAnalysis reads an analysis config from path (optional) with
// GLSCOPE_* environment overrides and the stock defaults applied
func LoadAnalysis(path string) (models.Config, error) {
	v := viper.New()
	setAnalysisDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return models.Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg models.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return models.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func setAnalysisDefaults(v *viper.Viper) {
	v.SetDefault("provider", models.ProviderGitLab)
	v.SetDefault("api_url", "")
	v.SetDefault("token", "")
	v.SetDefault("group_id", "")
	v.SetDefault("start_date", "")
	v.SetDefault("end_date", "")
	v.SetDefault("projects_num", models.DefaultProjectsNum)
	v.SetDefault("excluded_projects", []string{})
	v.SetDefault("valid_extensions", models.DefaultValidExtensions)
	v.SetDefault("max_concurrent_requests", models.DefaultMaxConcurrentRequests)
	v.SetDefault("ignored_paths", models.DefaultIgnoredPaths)
}
