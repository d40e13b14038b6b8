package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Acme Inc", "acme-inc"},
		{"  Launch  Website!  ", "launch-website"},
		{"Q3 / 2025 -- Roadmap", "q3-2025-roadmap"},
		{"ALL CAPS", "all-caps"},
		{"---", "untitled"},
		{"", "untitled"},
		{"désign & überprüfung", "désign-überprüfung"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Slugify(tc.name), "Slugify(%q)", tc.name)
	}
}
