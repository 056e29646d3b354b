package translation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrCorruptHistory is returned when a stored blob cannot be decoded as a
// record list.
var ErrCorruptHistory = errors.New("corrupt history")

//go:embed history.schema.json
var historySchemaJSON string

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// Encode serializes records into the storage blob format.
func Encode(records []Record) (string, error) {
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode history: %w", err)
	}
	return string(data), nil
}

// Decode parses a storage blob. An empty blob is an empty list. Any blob that
// is not a well-formed record list yields an error wrapping ErrCorruptHistory.
func Decode(blob string) ([]Record, error) {
	trimmed := strings.TrimSpace(blob)
	if trimmed == "" {
		return []Record{}, nil
	}

	value, err := decodeStrictJSON([]byte(trimmed))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptHistory, err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptHistory, err)
	}

	var records []Record
	if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptHistory, err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource("history.schema.json", strings.NewReader(historySchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("history.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}
		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("blob contains trailing content")
	}
	return value, nil
}
