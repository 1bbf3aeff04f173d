package sanitize

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		caret       int
		maxDecimals int
		wantText    string
		wantCaret   int
	}{
		{"empty", "", 0, 2, "", 0},
		{"plain digits", "123", 3, 2, "123", 3},
		{"strips letters", "1a2b3", 5, NoLimit, "123", 3},
		{"lone dot preserved", ".", 1, 2, ".", 1},
		{"second dot dropped", "1.2.3", 5, NoLimit, "1.23", 4},
		{"decimal truncation", "1.23456", 7, 2, "1.23", 4},
		{"zero decimals", "1.9", 3, 0, "1.", 2},
		{"no limit keeps fraction", "1.23456", 7, NoLimit, "1.23456", 7},
		{"caret before junk stays put", "12x34", 2, NoLimit, "1234", 2},
		{"caret after junk shifts left", "12x34", 3, NoLimit, "1234", 2},
		{"mid-string paste of symbols", "1$2,3", 5, NoLimit, "123", 3},
		{"caret beyond text clamps", "12", 99, NoLimit, "12", 2},
		{"negative caret clamps", "12", -1, NoLimit, "12", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, caret := Sanitize(tt.raw, tt.caret, tt.maxDecimals)
			if text != tt.wantText || caret != tt.wantCaret {
				t.Errorf("Sanitize(%q, %d, %d) = (%q, %d); want (%q, %d)",
					tt.raw, tt.caret, tt.maxDecimals, text, caret, tt.wantText, tt.wantCaret)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{"", ".", "abc", "1.2.3.4", "12.3456789", "0.000061", "$1,234.56"}
	for _, in := range inputs {
		for _, maxDec := range []int{NoLimit, 0, 2, 6} {
			once, _ := Sanitize(in, len(in), maxDec)
			twice, _ := Sanitize(once, len(once), maxDec)
			if once != twice {
				t.Errorf("Sanitize not idempotent for %q (maxDecimals=%d): %q then %q", in, maxDec, once, twice)
			}
		}
	}
}
