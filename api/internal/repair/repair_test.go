package repair

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "bare object", input: `{"a":1}`, want: `{"a":1}`, wantOK: true},
		{name: "prose around object", input: `Sure! {"a":1} Hope that helps.`, want: `{"a":1}`, wantOK: true},
		{name: "no opening brace", input: `a": 1}`, wantOK: false},
		{name: "no closing brace", input: `{"a": 1`, wantOK: false},
		{name: "no braces at all", input: `I cannot produce JSON right now.`, wantOK: false},
		{name: "closer before opener", input: `} nope {`, wantOK: false},
		{name: "empty string", input: "", wantOK: false},
		{name: "spans first to last brace", input: `x {"a":{"b":2}} y {"c":3} z`, want: `{"a":{"b":2}} y {"c":3}`, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractObject(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trailing comma in object", input: `{"a": 1,}`, want: `{"a": 1}`},
		{name: "trailing comma in array", input: `{"a": ["x",]}`, want: `{"a": ["x"]}`},
		{name: "trailing comma with whitespace", input: "{\"a\": 1,  \n}", want: "{\"a\": 1  \n}"},
		{name: "comma between members untouched", input: `{"a": 1, "b": 2}`, want: `{"a": 1, "b": 2}`},
		{name: "line separator", input: "{\"a\": \"x\u2028y\"}", want: `{"a": "x\ny"}`},
		{name: "paragraph separator", input: "{\"a\": \"x\u2029y\"}", want: `{"a": "x\ny"}`},
		{name: "already valid", input: `{"a": "b"}`, want: `{"a": "b"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}
}

func TestEscapeControl(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "raw newline in string", input: "{\"a\": \"line1\nline2\"}", want: `{"a": "line1\nline2"}`},
		{name: "raw tab in string", input: "{\"a\": \"x\ty\"}", want: `{"a": "x\ty"}`},
		{name: "carriage return dropped", input: "{\"a\": \"x\r\ny\"}", want: `{"a": "x\ny"}`},
		{name: "newline outside string kept", input: "{\n\"a\": 1\n}", want: "{\n\"a\": 1\n}"},
		{name: "irregular whitespace outside strings", input: `{ "a" : 1 }`, want: `{ "a" : 1 }`},
		{name: "escaped quote does not end string", input: "{\"a\": \"he said \\\"hi\nthere\\\"\"}", want: `{"a": "he said \"hi\nthere\""}`},
		{name: "escaped backslash then quote ends string", input: "{\"a\": \"x\\\\\",\n\"b\": 2}", want: "{\"a\": \"x\\\\\",\n\"b\": 2}"},
		{name: "multibyte text passes through", input: "{\"a\": \"привет\n мир\"}", want: `{"a": "привет\n мир"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeControl(tt.input))
		})
	}
}

// Valid JSON must survive the sanitize+escape passes byte for byte.
func TestPipelineIdentityOnValidJSON(t *testing.T) {
	inputs := []string{
		`{"a": 1}`,
		`{ "a" : [1, 2, 3] , "b" : {"c": null} }`,
		`{"a": "he said \"hi\""}`,
		`{"a": "tab\tand\nnewline already escaped"}`,
		`{"path": "C:\\Users\\x"}`,
		"{\n  \"pretty\": true\n}",
	}
	for _, in := range inputs {
		out := EscapeControl(Sanitize(in))
		assert.Equal(t, in, out)

		var want, got any
		require.NoError(t, json.Unmarshal([]byte(in), &want))
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, want, got)
	}
}

func TestRepair(t *testing.T) {
	t.Run("end to end", func(t *testing.T) {
		raw := "Here is the result:\n{\"title\": \"A\nB\", \"tags\": [\"x\",],}\nThanks!"
		v, ok := Repair(raw)
		require.True(t, ok)
		assert.Equal(t, map[string]any{
			"title": "A\nB",
			"tags":  []any{"x"},
		}, v)
	})

	t.Run("no braces falls through", func(t *testing.T) {
		v, ok := Repair("I cannot produce JSON right now.")
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("unparseable candidate falls through", func(t *testing.T) {
		v, ok := Repair("f(x) = {1 if x > 0} else {0}")
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("escaped newline survives strict parse", func(t *testing.T) {
		v, ok := Repair("{\"a\": \"line1\nline2\"}")
		require.True(t, ok)
		assert.Equal(t, map[string]any{"a": "line1\nline2"}, v)
	})

	t.Run("valid json parses to same value", func(t *testing.T) {
		v, ok := Repair(`{"a": "he said \"hi\"", "n": 1.5}`)
		require.True(t, ok)
		assert.Equal(t, map[string]any{"a": `he said "hi"`, "n": 1.5}, v)
	})
}
