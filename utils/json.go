package utils

import (
	json "github.com/bytedance/sonic"
)

// ToJSON marshals obj with sonic and reports marshal errors.
func ToJSON(obj any) (string, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// JsonString is ToJSON for log output, where errors are not interesting.
func JsonString(obj any) string {
	s, _ := ToJSON(obj)
	return s
}

func JsonIndent(obj any) string {
	jsonStr, _ := json.MarshalIndent(obj, "", "  ")
	return string(jsonStr)
}
