// Package valueobject holds small value types shared by entities and
// repositories.
package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

var ErrScanValueNotBytes = errors.New("valueobject: json map scan value is not bytes")

// JSONMap is a JSON object column, such as the details of an audit entry.
// @swaggertype object
type JSONMap map[string]any

func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

func (j *JSONMap) Scan(value any) error {
	var b []byte
	switch v := value.(type) {
	case nil:
		*j = JSONMap{}
		return nil
	case map[string]any:
		*j = v
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return ErrScanValueNotBytes
	}

	out := JSONMap{}
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	*j = out
	return nil
}

func (j JSONMap) GetString(key string) string {
	s, _ := j[key].(string)
	return s
}

// GetInt64 also accepts float64, which is how JSON numbers decode.
func (j JSONMap) GetInt64(key string) int64 {
	switch v := j[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}
