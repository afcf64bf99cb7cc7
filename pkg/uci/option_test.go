package uci

import "testing"

func TestBoolOptionSetAndFormat(t *testing.T) {
	var v = false
	var opt = &BoolOption{Name: "OwnBook", Value: &v}
	if got := opt.UciString(); got != "option name OwnBook type check default false" {
		t.Errorf("got %q", got)
	}
	if err := opt.Set("true"); err != nil {
		t.Fatal(err)
	}
	if !v {
		t.Error("expected Set(true) to flip the backing bool")
	}
}

func TestIntOptionRejectsOutOfRange(t *testing.T) {
	var v = 16
	var opt = &IntOption{Name: "Hash", Min: 1, Max: 1024, Value: &v}
	if err := opt.Set("2048"); err == nil {
		t.Error("expected an out-of-range value to be rejected")
	}
	if v != 16 {
		t.Error("a rejected Set must not mutate the backing value")
	}
	if err := opt.Set("64"); err != nil {
		t.Fatal(err)
	}
	if v != 64 {
		t.Errorf("got %v, want 64", v)
	}
}

func TestStringOptionRoundTripsEmptyValue(t *testing.T) {
	var v = "book.json"
	var opt = &StringOption{Name: "BookFile", Value: &v}
	if err := opt.Set(""); err != nil {
		t.Fatal(err)
	}
	if v != "" {
		t.Errorf("got %q, want empty", v)
	}
}

func TestButtonOptionRunsAction(t *testing.T) {
	var ran = false
	var opt = &ButtonOption{Name: "Clear Hash", Action: func() { ran = true }}
	if err := opt.Set(""); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Error("expected Set to invoke the button's action")
	}
}
