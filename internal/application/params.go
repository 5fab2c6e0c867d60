package application

import (
	"fmt"

	"atlassian-suite-mcp/internal/domain"
)

// getStringParam extracts a string parameter from the arguments map.
// Returns an error if the parameter is required but missing or not a string.
func getStringParam(args map[string]interface{}, name string, required bool) (string, error) {
	value, exists := args[name]
	if !exists || value == nil {
		if required {
			return "", &domain.Error{
				Code:    domain.InvalidParams,
				Message: fmt.Sprintf("missing required parameter: %s", name),
			}
		}
		return "", nil
	}

	strValue, ok := value.(string)
	if !ok {
		return "", &domain.Error{
			Code:    domain.InvalidParams,
			Message: fmt.Sprintf("parameter %s must be a string", name),
		}
	}

	return strValue, nil
}

// getStringParamDefault extracts an optional string parameter, substituting
// def when the argument is absent or empty.
func getStringParamDefault(args map[string]interface{}, name, def string) (string, error) {
	value, err := getStringParam(args, name, false)
	if err != nil {
		return "", err
	}
	if value == "" {
		return def, nil
	}
	return value, nil
}

// getIntParam extracts an integer parameter from the arguments map,
// substituting def when absent. JSON numbers arrive as float64.
func getIntParam(args map[string]interface{}, name string, def int) (int, error) {
	value, exists := args[name]
	if !exists || value == nil {
		return def, nil
	}

	switch v := value.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, &domain.Error{
			Code:    domain.InvalidParams,
			Message: fmt.Sprintf("parameter %s must be an integer", name),
		}
	}
}

// getBoolParam extracts an optional boolean parameter.
func getBoolParam(args map[string]interface{}, name string, def bool) (bool, error) {
	value, exists := args[name]
	if !exists || value == nil {
		return def, nil
	}

	boolValue, ok := value.(bool)
	if !ok {
		return false, &domain.Error{
			Code:    domain.InvalidParams,
			Message: fmt.Sprintf("parameter %s must be a boolean", name),
		}
	}

	return boolValue, nil
}

// getObjectParam extracts an optional object parameter (e.g. extra_fields).
// Returns nil when the argument is absent.
func getObjectParam(args map[string]interface{}, name string) (map[string]interface{}, error) {
	value, exists := args[name]
	if !exists || value == nil {
		return nil, nil
	}

	mapValue, ok := value.(map[string]interface{})
	if !ok {
		return nil, &domain.Error{
			Code:    domain.InvalidParams,
			Message: fmt.Sprintf("parameter %s must be an object", name),
		}
	}

	return mapValue, nil
}
