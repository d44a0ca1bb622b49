package loader

import "gopkg.in/yaml.v3"

// DecodeYAML unmarshals YAML into v. Keys without a matching field are
// ignored.
func DecodeYAML(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}
