package core

import (
	"encoding/json"
	"testing"
)

func TestAmountFloat(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"100", 100},
		{"12.5", 12.5},
		{"0", 0},
		{"", 0},
		{"abc", 0},
		{"NaN", 0},
		{"Infinity", 0},
		{"1e3", 1000},
	}
	for _, c := range cases {
		if got := RawAmount(c.raw).Float(); got != c.want {
			t.Fatalf("Float(%q)=%v want %v", c.raw, got, c.want)
		}
	}
}

func TestAmountUnmarshalNumberAndString(t *testing.T) {
	var v struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a": 42.5, "b": "17.25", "c": null}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A.Float() != 42.5 || v.B.Float() != 17.25 || v.C.Float() != 0 {
		t.Fatalf("unexpected amounts: %v %v %v", v.A, v.B, v.C)
	}
}

func TestAmountMarshalIsNumber(t *testing.T) {
	b, err := json.Marshal(struct {
		A Amount `json:"a"`
	}{A: RawAmount("12.50")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"a":12.5}` {
		t.Fatalf("got %s", b)
	}
}

func TestParseAmountInput(t *testing.T) {
	ok := map[string]string{
		"12.34":   "12.34",
		"12,34":   "12.34",
		" 7 ":     "7",
		"0.005":   "0.01",
		"1 000,5": "1000.5",
	}
	for in, want := range ok {
		d, err := ParseAmountInput(in)
		if err != nil {
			t.Fatalf("ParseAmountInput(%q) unexpected error: %v", in, err)
		}
		if d.String() != want {
			t.Fatalf("ParseAmountInput(%q)=%s want %s", in, d.String(), want)
		}
	}
	for _, in := range []string{"", "-1", "+3", "0", "abc", "1.2.3"} {
		if _, err := ParseAmountInput(in); err != ErrInvalidAmount {
			t.Fatalf("ParseAmountInput(%q) expected ErrInvalidAmount, got %v", in, err)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0,00\u00a0$"},
		{100, "100,00\u00a0$"},
		{1234.5, "1\u00a0234,50\u00a0$"},
		{-350, "-350,00\u00a0$"},
		{1234567.891, "1\u00a0234\u00a0567,89\u00a0$"},
	}
	for _, c := range cases {
		if got := FormatMoney(c.in); got != c.want {
			t.Fatalf("FormatMoney(%v)=%q want %q", c.in, got, c.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber(3); got != "3" {
		t.Fatalf("got %q", got)
	}
	if got := FormatNumber(12345); got != "12\u00a0345" {
		t.Fatalf("got %q", got)
	}
}
