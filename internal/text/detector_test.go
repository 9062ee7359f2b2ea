package text

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keagan/clipscout/internal/highlight"
)

func newTestDetector() *Detector {
	return NewDetector(zerolog.Nop(), DefaultConfig(), nil, nil)
}

func TestDetectKeywordsOneCandidatePerMatch(t *testing.T) {
	tr := &Transcript{
		Duration: 60,
		Segments: []Segment{{Start: 12.0, End: 14.5, Text: "no way that was amazing"}},
	}

	cs, err := newTestDetector().DetectKeywords(tr)
	require.NoError(t, err)
	require.Len(t, cs, 2)

	assert.Equal(t, "Keyword detected: amazing (excitement)", cs[0].Description)
	assert.Equal(t, "Keyword detected: no way (excitement)", cs[1].Description)
	for _, c := range cs {
		assert.Equal(t, 9.0, c.Start)
		assert.Equal(t, 19.5, c.End)
		assert.Equal(t, 0.9, c.Confidence)
		assert.Equal(t, highlight.TextKeyword, c.Type)
		assert.Equal(t, "excitement", c.Metadata["category"])
		assert.Equal(t, "no way that was amazing", c.Metadata["text"])
	}

	merged, err := highlight.NewMerger(highlight.DefaultMergeConfig()).Merge(cs)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "Keyword detected: amazing (excitement); Keyword detected: no way (excitement)", merged[0].Description)
}

func TestDetectKeywordsCaseInsensitive(t *testing.T) {
	tr := &Transcript{Segments: []Segment{{Start: 1, End: 2, Text: "What a CLUTCH play"}}}

	cs, err := newTestDetector().DetectKeywords(tr)
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, "clutch", cs[0].Metadata["keyword"])
	assert.Equal(t, "gaming", cs[0].Metadata["category"])
	assert.Equal(t, 0.0, cs[0].Start)
	assert.Equal(t, 7.0, cs[0].End)
}

func TestDetectKeywordsClampsToDuration(t *testing.T) {
	tr := &Transcript{
		Duration: 20,
		Segments: []Segment{{Start: 17, End: 18, Text: "wow"}},
	}

	cs, err := newTestDetector().DetectKeywords(tr)
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, 14.0, cs[0].Start)
	assert.Equal(t, 20.0, cs[0].End)
}

func TestDetectKeywordsCustomTable(t *testing.T) {
	table := NewKeywordTable(Category{Name: "speedrun", Terms: []string{" World Record ", ""}})
	d := NewDetector(zerolog.Nop(), DefaultConfig(), table, nil)

	cs, err := d.DetectKeywords(&Transcript{Segments: []Segment{{Start: 5, End: 6, Text: "that's a world record pace"}}})
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, "Keyword detected: world record (speedrun)", cs[0].Description)
}

func TestKeywordTableIsImmutable(t *testing.T) {
	table := DefaultKeywordTable()
	cats := table.Categories()
	cats[0].Terms[0] = "mutated"

	assert.Equal(t, "wow", table.Categories()[0].Terms[0])

	extended := table.With(Category{Name: "extra", Terms: []string{"pog"}})
	assert.Len(t, extended.Categories(), 4)
	assert.Len(t, table.Categories(), 3)
}

func TestDetectEmotionalMoments(t *testing.T) {
	tr := &Transcript{
		Duration: 100,
		Segments: []Segment{
			{Start: 10, End: 12, Text: "haha oh that was WILD!!"},
			{Start: 40, End: 41, Text: "just a normal sentence"},
			{Start: 50, End: 52, Text: "yesss"},
		},
	}

	cs, err := newTestDetector().DetectEmotionalMoments(tr)
	require.NoError(t, err)

	var labels []string
	for _, c := range cs {
		labels = append(labels, c.Metadata["pattern"].(string))
		assert.Equal(t, 0.8, c.Confidence)
		assert.Equal(t, highlight.DetectorEmotionalPattern, c.Detector)
		assertValid(t, c)
	}
	assert.Equal(t, []string{"laughter", "exclamation", "repeated_punctuation", "all_caps", "elongated"}, labels)

	first := cs[0]
	assert.Equal(t, 8.0, first.Start)
	assert.Equal(t, 15.0, first.End)
	assert.Equal(t, "Emotional moment detected: haha", first.Description)
	assert.Equal(t, []string{"haha"}, first.Metadata["matches"])

	last := cs[len(cs)-1]
	assert.Equal(t, 48.0, last.Start)
	assert.Equal(t, 55.0, last.End)
}

func TestAllCapsIsCaseSensitive(t *testing.T) {
	set := DefaultPatternSet()

	for _, m := range set.Find("quiet words only") {
		assert.NotEqual(t, "all_caps", m.Label)
	}

	found := set.Find("LETS GO")
	require.Len(t, found, 1)
	assert.Equal(t, []string{"LETS"}, found[0].Matches)
}

func TestCompilePatternsRejectsBadExpression(t *testing.T) {
	_, err := CompilePatterns([]PatternSpec{{Label: "broken", Expr: "("}})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "broken"))
}

func TestDetectorsWithoutTranscript(t *testing.T) {
	d := newTestDetector()

	_, err := d.DetectKeywords(nil)
	assert.True(t, errors.Is(err, highlight.ErrModalityUnavailable))

	_, err = d.DetectEmotionalMoments(nil)
	assert.True(t, errors.Is(err, highlight.ErrModalityUnavailable))

	cs, err := d.DetectKeywords(&Transcript{})
	require.NoError(t, err)
	assert.Empty(t, cs)
}

func TestLoadTranscript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.json")
	raw := `{
		"text": "wow. okay",
		"language": "en",
		"duration": 30.5,
		"segments": [
			{"id": 1, "start": 8.0, "end": 9.0, "text": "okay"},
			{"id": 0, "start": 1.0, "end": 2.5, "text": "wow"}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	tr, err := LoadTranscript(path)
	require.NoError(t, err)
	assert.Equal(t, "en", tr.Language)
	assert.Equal(t, 30.5, tr.Duration)
	require.Len(t, tr.Segments, 2)
	assert.Equal(t, "wow", tr.Segments[0].Text)
}

func TestParseTranscriptRejectsBadSegments(t *testing.T) {
	_, err := ParseTranscript(strings.NewReader(`{"segments":[{"start":5,"end":2,"text":"x"}]}`))
	assert.Error(t, err)

	_, err = ParseTranscript(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func assertValid(t *testing.T, c highlight.Candidate) {
	t.Helper()
	assert.NoError(t, c.Validate())
}
