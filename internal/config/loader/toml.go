package loader

import (
	"errors"

	"github.com/pelletier/go-toml/v2"
)

// DecodeTOML unmarshals TOML into v. Keys without a matching field are
// ignored.
func DecodeTOML(data []byte, v any) error {
	if err := toml.Unmarshal(data, v); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, _ := derr.Position()
			return &lineError{line: row, err: err}
		}
		return err
	}
	return nil
}

// EncodeTOML marshals v as TOML.
func EncodeTOML(v any) ([]byte, error) {
	return toml.Marshal(v)
}
