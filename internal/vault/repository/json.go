package repository

import (
	"encoding/json"

	apperrors "github.com/passkeep/passkeep/internal/errors"
)

// encodeJSON marshals a value for storage in a JSON text column.
func encodeJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode json column")
	}
	return data, nil
}

// decodeJSON unmarshals a JSON text column into dst.
func decodeJSON(data []byte, dst any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return apperrors.Wrap(err, "failed to decode json column")
	}
	return nil
}
