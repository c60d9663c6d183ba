package util

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 7.67, RoundTo(Mean(8, 7, 8), 2))
	assert.Equal(t, 6.0, RoundTo(Mean(6, 6, 6), 2))
	assert.Equal(t, 0.0, Mean())
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "hello big world", CollapseWhitespace("  hello\n big\t\tworld "))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "날씨...", TruncateString("날씨정보", 2))
	assert.Equal(t, "abc", TruncateString("abc", 5))
}

func TestPreviewCutsOnRuneBoundary(t *testing.T) {
	assert.Equal(t, "abc", Preview("abc", 10))
	assert.Equal(t, "ab", Preview("abcdef", 2))

	// "한" is three bytes; a four-byte cut must not split the second rune.
	got := Preview("한국어", 4)
	assert.Equal(t, "한", got)
	assert.True(t, utf8.ValidString(got))
}

func TestDaysFrom(t *testing.T) {
	now := time.Date(2025, 3, 31, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), DaysFrom(now, 1))
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), StartOfDay(now))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "  ", "b", "c"))
	assert.Equal(t, "", FirstNonEmpty())
}
