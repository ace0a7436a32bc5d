package core

import (
	"encoding/json"
	"testing"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain integer", input: "100000", want: "100000.00"},
		{name: "two decimals", input: "451802.45", want: "451802.45"},
		{name: "comma separator", input: "12,34", want: "12.34"},
		{name: "negative preserved", input: "-5000", want: "-5000.00"},
		{name: "whitespace trimmed", input: "  70000 ", want: "70000.00"},
		{name: "empty", input: "", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "double separator", input: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMoney(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMoney(%q) expected error, got %v", tt.input, m)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMoney(%q) unexpected error: %v", tt.input, err)
			}
			if got := m.String(); got != tt.want {
				t.Errorf("ParseMoney(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoney_ExactSummation(t *testing.T) {
	// Binary floating point would drift summing 0.1 thousands of times;
	// the decimal representation must not.
	sum := Zero
	step := MustMoney("0.10")
	for i := 0; i < 10000; i++ {
		sum = sum.Add(step)
	}
	if !sum.Equal(MustMoney("1000")) {
		t.Errorf("10000 * 0.10 = %s, want 1000.00", sum)
	}
}

func TestMoney_Key(t *testing.T) {
	a := MustMoney("70000")
	b := MustMoney("70000.00")
	if a.Key() != b.Key() {
		t.Errorf("equal amounts got different keys: %q vs %q", a.Key(), b.Key())
	}

	// Keys must keep full precision; amounts that differ only past the
	// second fraction digit are different amounts.
	c := MustMoney("10.001")
	d := MustMoney("10.004")
	if c.Key() == d.Key() {
		t.Errorf("distinct amounts share a key: %q", c.Key())
	}
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	in := MustMoney("451802.45")
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"451802.45"` {
		t.Errorf("marshal = %s, want %q", data, "451802.45")
	}
	var out Money
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !in.Equal(out) {
		t.Errorf("round trip changed value: %s -> %s", in, out)
	}
}
