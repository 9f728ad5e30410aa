package transform

// DeepClone copies a decoded JSON value structurally. The transformer
// mutates its copy freely while the fetched record stays read-only.
func DeepClone(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, entry := range typed {
			out[key] = DeepClone(entry)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, entry := range typed {
			out[i] = DeepClone(entry)
		}
		return out
	default:
		return typed
	}
}

// CloneRecord is DeepClone specialised to the record root.
func CloneRecord(record map[string]any) map[string]any {
	if record == nil {
		return nil
	}
	return DeepClone(record).(map[string]any)
}
