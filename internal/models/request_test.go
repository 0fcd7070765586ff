package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitRequest_Decode(t *testing.T) {
	body := `{
		"fields": [
			{"id": "f1", "type": "text", "label": "Name"},
			{"id": 1700000000000, "type": "checkbox", "label": "Agree"}
		],
		"formData": {"f1": "Ann", "1700000000000": true, "age": 42, "ratio": 0.5}
	}`

	var req SubmitRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	require.Len(t, req.Fields, 2)
	assert.Equal(t, ClientID("f1"), req.Fields[0].ID)
	assert.Equal(t, ClientID("1700000000000"), req.Fields[1].ID)

	assert.Equal(t, "Ann", req.FormData["f1"].String())
	assert.Equal(t, KindString, req.FormData["f1"].Kind())
	assert.Equal(t, "true", req.FormData["1700000000000"].String())
	assert.Equal(t, KindBool, req.FormData["1700000000000"].Kind())
	assert.Equal(t, "42", req.FormData["age"].String())
	assert.Equal(t, "0.5", req.FormData["ratio"].String())
	assert.Equal(t, KindNumber, req.FormData["ratio"].Kind())
}

func TestValue_RejectsNonScalars(t *testing.T) {
	for _, body := range []string{`null`, `[1,2]`, `{"a":1}`} {
		t.Run(body, func(t *testing.T) {
			var v Value
			err := json.Unmarshal([]byte(body), &v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "must be a string, number or boolean")
		})
	}
}

func TestValue_MarshalRoundTripsKind(t *testing.T) {
	out, err := json.Marshal(map[string]Value{
		"s": StringValue("x"),
		"b": BoolValue(false),
		"n": NumberValue("3.25"),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"x","b":false,"n":3.25}`, string(out))
}

func TestClientID_RejectsObjects(t *testing.T) {
	var id ClientID
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &id))
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.0", "1"},
		{"1.50", "1.5"},
		{"1e3", "1000"},
		{"-0", "0"},
		{"0.000", "0"},
		{"42", "42"},
		{"-3.25", "-3.25"},
		{"1700000000000", "1700000000000"},
		{"0.000001", "0.000001"},
		{"1.5e-7", "1.5e-7"},
		{"1e21", "1e+21"},
		{"123456789012345680000", "123456789012345680000"},
		{"1e400", "Infinity"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := FormatNumber(json.Number(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatNumber_RejectsText(t *testing.T) {
	_, err := FormatNumber(json.Number("abc"))
	assert.Error(t, err)
}

func TestSubmitRequest_Decode_CanonicalNumbers(t *testing.T) {
	body := `{
		"fields": [
			{"id": 1.0, "type": "number", "label": "Qty"},
			{"id": "p", "type": "number", "label": "Price"}
		],
		"formData": {"1": 5, "p": 1.50, "e": 1e3, "z": -0}
	}`

	var req SubmitRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.Equal(t, ClientID("1"), req.Fields[0].ID)
	assert.Equal(t, "5", req.FormData["1"].String())
	assert.Equal(t, "1.5", req.FormData["p"].String())
	assert.Equal(t, "1000", req.FormData["e"].String())
	assert.Equal(t, "0", req.FormData["z"].String())
}

func TestValue_MarshalInfinityAsString(t *testing.T) {
	out, err := json.Marshal(NumberValue("1e400"))
	require.NoError(t, err)
	assert.Equal(t, `"Infinity"`, string(out))
}
