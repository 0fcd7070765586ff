// internal/models/request.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// SubmitRequest is the payload accepted by every transport: the field list of
// a new form together with one response keyed by client field id.
type SubmitRequest struct {
	Fields   []FieldInput     `json:"fields"`
	FormData map[string]Value `json:"formData"`
}

// FieldInput describes a field as the client built it. ID is only meaningful
// within the request that carries it.
type FieldInput struct {
	ID    ClientID `json:"id"`
	Type  string   `json:"type"`
	Label string   `json:"label"`
}

// ClientID is a client-local field identifier. Form builders commonly send
// numeric ids; they are rendered with FormatNumber so 1.0 matches the
// formData key "1".
type ClientID string

func (c *ClientID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = ClientID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("field id must be a string or number: %w", err)
	}
	text, err := FormatNumber(n)
	if err != nil {
		return fmt.Errorf("field id must be a string or number: %w", err)
	}
	*c = ClientID(text)
	return nil
}

// ValueKind is the JSON scalar kind a Value was submitted as.
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindBool
)

// Value is a submitted scalar. Only strings, numbers and booleans are
// accepted; objects, arrays and null are rejected while decoding.
type Value struct {
	kind ValueKind
	text string
}

func StringValue(s string) Value { return Value{kind: KindString, text: s} }

func BoolValue(b bool) Value { return Value{kind: KindBool, text: strconv.FormatBool(b)} }

// NumberValue stores n in its canonical text, see FormatNumber. Text that is
// not a number is kept as given.
func NumberValue(n json.Number) Value {
	text, err := FormatNumber(n)
	if err != nil {
		text = n.String()
	}
	return Value{kind: KindNumber, text: text}
}

// Kind reports how the value was submitted.
func (v Value) Kind() ValueKind { return v.kind }

// String returns the stored representation: strings verbatim, booleans as
// true/false and numbers in canonical text.
func (v Value) String() string { return v.text }

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch t := raw.(type) {
	case string:
		*v = StringValue(t)
	case bool:
		*v = BoolValue(t)
	case json.Number:
		*v = NumberValue(t)
	default:
		return fmt.Errorf("form value must be a string, number or boolean, got %s", describe(raw))
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool, KindNumber:
		if v.text == "" {
			return []byte("null"), nil
		}
		if !json.Valid([]byte(v.text)) {
			return json.Marshal(v.text)
		}
		return []byte(v.text), nil
	default:
		return json.Marshal(v.text)
	}
}

func describe(raw interface{}) string {
	switch raw.(type) {
	case nil:
		return "null"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", raw)
	}
}
