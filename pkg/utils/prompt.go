package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cast"

	"github.com/picogrid/tactical-retreat/pkg/simulation"
)

const (
	// EnvPrefix prefixes parameter overrides, e.g. RETREAT_STEP_SECONDS
	EnvPrefix = "RETREAT_"

	// SkipPromptsEnv disables interactive prompts (CI, scripts)
	SkipPromptsEnv = EnvPrefix + "SKIP_PROMPTS"
)

// PromptForParameters collects a value for every parameter. Values in preset
// are taken as given; the rest are prompted for, using environment
// overrides as defaults.
func PromptForParameters(params []simulation.Parameter, preset map[string]interface{}) (map[string]interface{}, error) {
	result := make(map[string]interface{})
	skip := SkipPrompts()

	for _, param := range params {
		if value, ok := preset[param.Name]; ok {
			normalized, err := param.Normalize(value)
			if err != nil {
				return nil, err
			}
			result[param.Name] = normalized
			continue
		}

		value, err := resolveParameter(param, skip)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", param.Name, err)
		}
		if value != nil {
			result[param.Name] = value
		}
	}

	return result, nil
}

// SkipPrompts reports whether prompts are disabled by the environment
func SkipPrompts() bool {
	skip, _ := cast.ToBoolE(os.Getenv(SkipPromptsEnv))
	return skip
}

func resolveParameter(param simulation.Parameter, skip bool) (interface{}, error) {
	envKey := EnvPrefix + strings.ToUpper(param.Name)
	if envValue := os.Getenv(envKey); envValue != "" {
		parsed, err := parseEnvValue(envValue, param)
		switch {
		case err == nil && skip:
			return parsed, nil
		case err == nil:
			param.Default = parsed
		case skip:
			return nil, fmt.Errorf("%s: %w", envKey, err)
		}
	}

	if skip {
		if param.Default != nil {
			return param.Normalize(param.Default)
		}
		if param.Required {
			return nil, fmt.Errorf("required parameter %s not provided and no default available", param.Name)
		}
		return nil, nil
	}

	return promptForParameter(param)
}

// parseEnvValue parses an environment variable value according to the parameter type
func parseEnvValue(value string, param simulation.Parameter) (interface{}, error) {
	var (
		parsed interface{}
		err    error
	)
	switch param.Type {
	case "integer":
		parsed, err = cast.ToIntE(value)
	case "float":
		parsed, err = cast.ToFloat64E(value)
	case "boolean":
		parsed, err = cast.ToBoolE(value)
	case "string", "duration":
		parsed = value
	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", param.Type)
	}
	if err != nil {
		return nil, err
	}
	return param.Normalize(parsed)
}

// promptForParameter prompts for a single parameter
func promptForParameter(param simulation.Parameter) (interface{}, error) {
	defaultStr := ""
	if param.Default != nil {
		defaultStr = cast.ToString(param.Default)
		if d, ok := param.Default.(fmt.Stringer); ok {
			defaultStr = d.String()
		}
	}

	switch {
	case param.Type == "boolean":
		return promptBoolean(param)
	case param.Type == "string" && len(param.Options) > 0:
		prompt := &survey.Select{
			Message: param.Description,
			Options: param.Options,
			Default: defaultStr,
		}
		var result string
		if err := survey.AskOne(prompt, &result); err != nil {
			return nil, err
		}
		return result, nil
	}

	message := param.Description
	if param.Type == "duration" {
		message += " (e.g., 5m, 1h30m, 30s)"
	}

	prompt := &survey.Input{
		Message: message,
		Default: defaultStr,
	}

	validators := []survey.Validator{func(val interface{}) error {
		str, _ := val.(string)
		if str == "" && !param.Required {
			return nil
		}
		_, err := parseEnvValue(str, param)
		return err
	}}
	if param.Required {
		validators = append(validators, survey.Required)
	}

	var result string
	if err := survey.AskOne(prompt, &result, survey.WithValidator(survey.ComposeValidators(validators...))); err != nil {
		return nil, err
	}
	if result == "" {
		return nil, nil
	}
	return parseEnvValue(result, param)
}

func promptBoolean(param simulation.Parameter) (bool, error) {
	defaultBool := false
	if param.Default != nil {
		defaultBool = cast.ToBool(param.Default)
	}

	prompt := &survey.Confirm{
		Message: param.Description,
		Default: defaultBool,
	}

	var result bool
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}

	return result, nil
}
