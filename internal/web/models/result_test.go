package models

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestReadyRestrict(t *testing.T) {
	labels := LabelSet{"Help Offer", "Help Wanted"}
	r := Ready{
		SearchTerm: "oxygen",
		Groups: map[string][]string{
			"Help Offer":  {"1", "2"},
			"Help Wanted": {},
			"Spam":        {"3"},
			"Other":       {"4"},
		},
	}

	got, dropped := r.Restrict(labels)

	want := Ready{
		SearchTerm: "oxygen",
		Groups: map[string][]string{
			"Help Offer":  {"1", "2"},
			"Help Wanted": {},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Restrict() mismatch (-want +got):\n%s", diff)
	}

	sort.Strings(dropped)
	assert.Equal(t, []string{"Other", "Spam"}, dropped)

	// receiver untouched
	assert.Len(t, r.Groups, 4)
}

func TestResultStateTerm(t *testing.T) {
	states := []ResultState{
		Processing{SearchTerm: "a"},
		EmptyResult{SearchTerm: "a"},
		Ready{SearchTerm: "a"},
	}
	for _, s := range states {
		assert.Equal(t, "a", s.Term())
	}
}

func TestLabelSet(t *testing.T) {
	assert.False(t, LabelSet(nil).Configured())
	assert.False(t, LabelSet{"only"}.Configured())
	assert.True(t, LabelSet{"a", "b"}.Configured())

	l := LabelSet{"Help Offer", "Help Wanted"}
	assert.True(t, l.Contains("Help Wanted"))
	assert.False(t, l.Contains("help wanted"))
	assert.Equal(t, "Help Offer", l.First())
	assert.Equal(t, "", LabelSet{}.First())
}

func TestLabelColor(t *testing.T) {
	assert.Equal(t, "label-green-400", LabelColor(0))
	assert.Equal(t, "label-red-400", LabelColor(1))
	assert.Equal(t, LabelColor(0), LabelColor(len(labelColors)))
}

func TestParseTweetCount(t *testing.T) {
	tests := []struct {
		in   string
		want TweetCount
	}{
		{"10", TweetCount10},
		{"50", TweetCount50},
		{"100", TweetCount100},
		{"1000", TweetCount1000},
		{"", DefaultTweetCount},
		{"25", DefaultTweetCount},
		{"-10", DefaultTweetCount},
		{"ten", DefaultTweetCount},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseTweetCount(tt.in), "input %q", tt.in)
	}
}

func TestSearchHandlePath(t *testing.T) {
	assert.Equal(t, "/search/ab12cd34", SearchHandle("ab12cd34").Path())
}
