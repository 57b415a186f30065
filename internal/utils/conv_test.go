package utils

import "testing"

func TestParseID(t *testing.T) {
	cases := map[string]struct {
		id uint
		ok bool
	}{
		"42":  {42, true},
		"0":   {0, false},
		"-3":  {0, false},
		"abc": {0, false},
		"":    {0, false},
	}
	for in, want := range cases {
		id, ok := ParseID(in)
		if id != want.id || ok != want.ok {
			t.Errorf("ParseID(%q) = %d, %v; want %d, %v", in, id, ok, want.id, want.ok)
		}
	}
}

func TestStringToInt(t *testing.T) {
	if StringToInt("7") != 7 || StringToInt("x") != 0 {
		t.Errorf("StringToInt misparsed")
	}
}
