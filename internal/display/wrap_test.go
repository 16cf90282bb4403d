package display

import (
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestWrap(t *testing.T) {
	tests := map[string]struct {
		text     string
		expLines int
	}{
		"short line": {
			text:     "Zones: spawn",
			expLines: 1,
		},
		"long zone list": {
			text:     "Zones: " + strings.Repeat("market_square, ", 10) + "docks",
			expLines: 3,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := Wrap(tt.text)
			lines := strings.Split(got, "\n")
			testutil.AssertEqual(t, "lines", len(lines), tt.expLines)
			for _, l := range lines {
				if len(l) > DefaultWidth {
					t.Errorf("line %q is longer than %d", l, DefaultWidth)
				}
			}
		})
	}
}
