package application

// Helpers for projecting decoded JSON bodies into tool summaries.
// Missing keys and nil intermediate objects resolve to nil, which marshals
// back to JSON null in the summary, mirroring absent remote fields.

// field walks a key path inside a decoded JSON object.
// It returns nil as soon as any step is missing or not an object.
func field(data map[string]interface{}, path ...string) interface{} {
	var current interface{} = data
	for _, key := range path {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current = obj[key]
	}
	return current
}

// itemField is field for entries of a decoded JSON array.
func itemField(item interface{}, path ...string) interface{} {
	obj, ok := item.(map[string]interface{})
	if !ok {
		return nil
	}
	return field(obj, path...)
}

// listField returns the array under key, or nil when absent.
func listField(data map[string]interface{}, key string) []interface{} {
	list, _ := data[key].([]interface{})
	return list
}

// firstItem returns the first entry of a decoded JSON array response, or the
// value itself when the remote returned a single object.
func firstItem(data interface{}) interface{} {
	if list, ok := data.([]interface{}); ok {
		if len(list) == 0 {
			return nil
		}
		return list[0]
	}
	return data
}
