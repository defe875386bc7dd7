package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type listEnvelope[T any] struct {
	Data  []T  `json:"data"`
	Total *int `json:"total"`
}

// decodeList accepts a bare array or a {"data": [...]} envelope and returns
// the items with the total count. A missing total means len(items).
func decodeList[T any](body []byte) ([]T, int, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, 0, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, 0, fmt.Errorf("decode list: %w", err)
		}
		return items, len(items), nil
	}

	var env listEnvelope[T]
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, 0, fmt.Errorf("decode list envelope: %w", err)
	}
	if env.Data == nil {
		env.Data = []T{}
	}
	total := len(env.Data)
	if env.Total != nil {
		total = *env.Total
	}
	return env.Data, total, nil
}
