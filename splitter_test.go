package dumpstream

import (
	"reflect"
	"testing"
)

func TestSplitRecords(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		records []string
		tail    string
	}{
		{
			name:    "no delimiter",
			input:   `{"id":"Q1"`,
			records: nil,
			tail:    `{"id":"Q1"`,
		},
		{
			name:    "one complete record",
			input:   "{\"id\":\"Q1\"},\n{\"id\":",
			records: []string{`{"id":"Q1"}`},
			tail:    `{"id":`,
		},
		{
			name:    "several complete records",
			input:   "{\"a\":1},\n{\"b\":2},\n{\"c\":3},\n",
			records: []string{`{"a":1}`, `{"b":2}`, `{"c":3}`},
			tail:    "",
		},
		{
			name:    "consecutive delimiters give a zero length record",
			input:   "{\"a\":1},\n,\n{\"b\":2}",
			records: []string{`{"a":1}`, ""},
			tail:    `{"b":2}`,
		},
		{
			name:    "comma without newline is not a delimiter",
			input:   `{"a":[1,2]},{"b":3}`,
			records: nil,
			tail:    `{"a":[1,2]},{"b":3}`,
		},
		{
			name:    "empty input",
			input:   "",
			records: nil,
			tail:    "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, tail := splitRecords([]byte(tt.input))
			var got []string
			for _, r := range records {
				got = append(got, string(r))
			}
			if !reflect.DeepEqual(got, tt.records) {
				t.Errorf("records: expected %q got %q", tt.records, got)
			}
			if string(tail) != tt.tail {
				t.Errorf("tail: expected %q got %q", tt.tail, tail)
			}
		})
	}
}

func TestTerminalRecord(t *testing.T) {
	tests := []struct {
		name   string
		tail   string
		record string
		ok     bool
	}{
		{
			name:   "final record",
			tail:   "{\"id\":\"Q5\"}\n]",
			record: `{"id":"Q5"}`,
			ok:     true,
		},
		{
			name: "incomplete record",
			tail: `{"id":"Q5"`,
			ok:   false,
		},
		{
			name: "close marker split across chunks",
			tail: "{\"id\":\"Q5\"}\n",
			ok:   false,
		},
		{
			name:   "empty final record",
			tail:   "\n]",
			record: "",
			ok:     true,
		},
		{
			name: "bracket without newline",
			tail: `{"id":"Q5"}]`,
			ok:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, ok := terminalRecord([]byte(tt.tail))
			if ok != tt.ok {
				t.Fatalf("expected ok = %v, got %v", tt.ok, ok)
			}
			if ok && string(record) != tt.record {
				t.Errorf("record: expected %q got %q", tt.record, record)
			}
		})
	}
}
