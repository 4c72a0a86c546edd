package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"rtsched/internal/logging"
	"rtsched/internal/model"
	"rtsched/internal/scheduler"

	"gopkg.in/yaml.v3"
)

var knownFormats = map[string]bool{"": true, "ipe": true, "tikz": true}

var knownPalettes = map[string]bool{"": true, "ipe": true, "warm": true, "happy": true}

func LoadConfig(filepath string) (*TaskSetConfig, error) {
	config, _, err := LoadConfigWithContent(filepath)
	return config, err
}

func LoadConfigWithContent(filepath string) (*TaskSetConfig, string, error) {
	logger := logging.GetLogger()

	data, err := os.ReadFile(filepath)
	if err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to read config file")
		return nil, "", err
	}

	originalContent := string(data)
	config, err := ParseConfig(originalContent)
	if err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to parse config file")
		return nil, "", err
	}
	return config, originalContent, nil
}

// ParseConfig expands ${ENV} references, decodes the YAML and validates it.
func ParseConfig(content string) (*TaskSetConfig, error) {
	expanded := expandEnvVars(content)

	var config TaskSetConfig
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, err
	}

	// Set KeyName field for each task based on the YAML key
	for keyName, task := range config.Tasks {
		task.KeyName = keyName
		config.Tasks[keyName] = task
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

func expandEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		envVar := strings.Trim(match, "${}")
		if value := os.Getenv(envVar); value != "" {
			return value
		}
		return match
	})
}

func validateConfig(config *TaskSetConfig) error {
	if config.TaskSet.Name == "" {
		return fmt.Errorf("task set name is required")
	}

	if len(config.Tasks) == 0 {
		return model.ErrEmptyTaskSet
	}

	sched := config.TaskSet.Scheduler
	if sched.Algorithm != "" {
		if _, err := scheduler.ParsePolicy(sched.Algorithm); err != nil {
			return err
		}
	}
	if sched.Slice < 0 {
		return fmt.Errorf("scheduler slice must be greater than 0")
	}
	if sched.MaxHyperperiod < 0 {
		return fmt.Errorf("scheduler max_hyperperiod must not be negative")
	}

	render := config.TaskSet.Render
	if !knownFormats[strings.ToLower(render.Format)] {
		return fmt.Errorf("unknown render format: %s", render.Format)
	}
	if !knownPalettes[strings.ToLower(render.Palette)] {
		return fmt.Errorf("unknown render palette: %s", render.Palette)
	}
	if render.GridSize < 0 || render.Padding < 0 {
		return fmt.Errorf("render grid_size and padding must not be negative")
	}

	indices := make(map[int]string)
	var errs []error
	for _, tc := range config.GetTasksSorted() {
		if other, exists := indices[tc.Index]; exists {
			errs = append(errs, fmt.Errorf("task %s: index %d already used by %s", tc.KeyName, tc.Index, other))
			continue
		}
		indices[tc.Index] = tc.KeyName

		if _, err := tc.Task(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
