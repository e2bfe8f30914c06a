package textclean

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanEmptyInputUnchanged(t *testing.T) {
	t.Parallel()

	cleaner := NewCleaner(nil)
	require.Equal(t, "", cleaner.Clean(""))
}

func TestCleanCollapsesShortTokenRuns(t *testing.T) {
	t.Parallel()

	cleaner := NewCleaner(nil)
	input := strings.TrimSpace(strings.Repeat("la ", 13))
	require.Equal(t, "la", cleaner.Clean(input))
}

func TestCleanShortRunIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	cleaner := NewCleaner(nil)
	input := "La " + strings.TrimSpace(strings.Repeat("la LA ", 6))
	require.Equal(t, "La", cleaner.Clean(input))
}

func TestCleanKeepsModerateRepetition(t *testing.T) {
	t.Parallel()

	cleaner := NewCleaner(nil)
	require.Equal(t, "no no no", cleaner.Clean("no no no"))
}

func TestCleanCollapsesSingleCharacterRuns(t *testing.T) {
	t.Parallel()

	cleaner := NewCleaner(nil)
	input := "the sound was " + strings.TrimSpace(strings.Repeat("m ", 7))
	require.Equal(t, "the sound was m", cleaner.Clean(input))
}

func TestCleanDropsLongTokenRuns(t *testing.T) {
	t.Parallel()

	cleaner := NewCleaner(nil)
	input := "before " + strings.TrimSpace(strings.Repeat("beep ", 9)) + " after"
	require.Equal(t, "before after", cleaner.Clean(input))
}

func TestCleanRemovesSubtitleCredits(t *testing.T) {
	t.Parallel()

	cleaner := NewCleaner(nil)

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "amara community english",
			input: "Subtitles created by the Amara.org community and now the song begins",
			want:  "and now the song begins",
		},
		{
			name:  "amara community mixed case",
			input: "SUBTITLES CREATED BY THE AMARA.ORG COMMUNITY hello",
			want:  "hello",
		},
		{
			name:  "italian credits",
			input: "Sottotitoli creati dalla comunità Amara.org qtss. testo vero",
			want:  "testo vero",
		},
		{
			name:  "revision credits",
			input: "Subtitles and revision by someone qtss. real lyrics here",
			want:  "real lyrics here",
		},
		{
			name:  "translation credits across newline",
			input: "Translation and adaptation\nby a volunteer team qtss. verse one",
			want:  "verse one",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, cleaner.Clean(tc.input))
		})
	}
}

func TestCleanTrimsTrailingWordRuns(t *testing.T) {
	t.Parallel()

	cleaner := NewCleaner(nil)
	input := "the song fades with goodbye goodbye goodbye goodbye goodbye goodbye goodbye goodbye goodbye"
	require.Equal(t, "the song fades with goodbye", cleaner.Clean(input))
}

func TestCleanLeavesShortTextsTrailingRunsAlone(t *testing.T) {
	t.Parallel()

	cleaner := NewCleaner(nil)
	// Four words or fewer: the trailing-run trim does not apply.
	require.Equal(t, "stop stop stop stop", cleaner.Clean("stop stop stop stop"))
}

func TestCleanStripsTrailingLetterRuns(t *testing.T) {
	t.Parallel()

	cleaner := NewCleaner(nil)
	require.Equal(t, "fading out", cleaner.Clean("fading out e e e"))
}

func TestCleanNormalizesWhitespace(t *testing.T) {
	t.Parallel()

	cleaner := NewCleaner(nil)
	require.Equal(t, "one two three", cleaner.Clean("  one\t\ttwo\n\nthree  "))
}

func TestCleanIsIdempotent(t *testing.T) {
	t.Parallel()

	cleaner := NewCleaner(nil)
	inputs := []string{
		"",
		"plain transcript with nothing to remove",
		strings.TrimSpace(strings.Repeat("la ", 13)),
		"Subtitles created by the Amara.org community something remains",
		"intro words then goodbye goodbye goodbye goodbye goodbye goodbye goodbye",
		"fading out e e e e",
		"  spaced \t badly \n here ",
	}

	for _, input := range inputs {
		once := cleaner.Clean(input)
		require.Equal(t, once, cleaner.Clean(once), "input %q", input)
	}
}
