package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeOrdered parses a catalog object while preserving the order its
// keys appear in the file. encoding/json's map decoding discards order,
// which is exactly the property the catalog must keep, so the object is
// walked token by token instead.
func decodeOrdered(data []byte) ([]string, map[string]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	var keys []string
	records := make(map[string]Record)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("invalid JSON key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected a string key, got %v", keyTok)
		}

		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return nil, nil, fmt.Errorf("invalid record for %q: %w", key, err)
		}
		if _, dup := records[key]; dup {
			return nil, nil, fmt.Errorf("duplicate key %q", key)
		}
		keys = append(keys, key)
		records[key] = rec
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return keys, records, nil
}

// encodeOrdered renders the catalog pretty-printed with keys in the
// given order, matching the layout transcription runs produce.
func encodeOrdered(keys []string, records map[string]Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range keys {
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		recJSON, err := json.MarshalIndent(records[key], "    ", "    ")
		if err != nil {
			return nil, err
		}
		buf.WriteString("\n    ")
		buf.Write(keyJSON)
		buf.WriteString(": ")
		buf.Write(recJSON)
		if i < len(keys)-1 {
			buf.WriteByte(',')
		}
	}
	if len(keys) > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}
