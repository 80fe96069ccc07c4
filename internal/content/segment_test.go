package content

import (
	"reflect"
	"testing"
)

func TestSegment(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []Page
	}{
		{
			name: "markerless body is a single page",
			raw:  "plain lesson text",
			want: []Page{{Text: "plain lesson text"}},
		},
		{
			name: "empty body yields one empty page",
			raw:  "   ",
			want: []Page{{Text: ""}},
		},
		{
			name: "quiz binds to preceding page",
			raw:  "intro [QUIZ: q1] outro",
			want: []Page{
				{Text: "intro", QuizID: "q1"},
				{Text: "outro"},
			},
		},
		{
			name: "challenge binds to preceding page",
			raw:  "write it [CHALLENGE: ex1]",
			want: []Page{{Text: "write it", ExerciseID: "ex1"}},
		},
		{
			name: "next flags the page it terminates",
			raw:  "one [NEXT] two",
			want: []Page{
				{Text: "one", AutoAdvance: true},
				{Text: "two"},
			},
		},
		{
			name: "leading quiz falls forward onto the next page",
			raw:  "[QUIZ: q1]text[NEXT]more",
			want: []Page{
				{Text: "text", QuizID: "q1", AutoAdvance: true},
				{Text: "more"},
			},
		},
		{
			name: "second binding on a bound page falls forward",
			raw:  "a [QUIZ: q1][CHALLENGE: ex1] b",
			want: []Page{
				{Text: "a", QuizID: "q1"},
				{Text: "b", ExerciseID: "ex1"},
			},
		},
		{
			name: "trailing binding marker gets an empty page",
			raw:  "a [QUIZ: q1][QUIZ: q2]",
			want: []Page{
				{Text: "a", QuizID: "q1"},
				{Text: "", QuizID: "q2"},
			},
		},
		{
			name: "marker id whitespace is trimmed",
			raw:  "a [QUIZ:   q1  ]",
			want: []Page{{Text: "a", QuizID: "q1"}},
		},
		{
			name: "unterminated marker stays in the text",
			raw:  "a [QUIZ: q1 and on",
			want: []Page{{Text: "a [QUIZ: q1 and on"}},
		},
		{
			name: "blank marker id stays in the text",
			raw:  "a [QUIZ: ] b",
			want: []Page{{Text: "a [QUIZ: ] b"}},
		},
		{
			name: "unknown bracket text is ordinary content",
			raw:  "see [RFC 1234] for details",
			want: []Page{{Text: "see [RFC 1234] for details"}},
		},
		{
			name: "consecutive next markers collapse empty spans",
			raw:  "a [NEXT][NEXT] b",
			want: []Page{
				{Text: "a", AutoAdvance: true},
				{Text: "b"},
			},
		},
		{
			name: "leading next has no page to flag",
			raw:  "[NEXT] a",
			want: []Page{{Text: "a"}},
		},
		{
			name: "full lesson flow",
			raw:  "intro [QUIZ: q1] middle [NEXT] deep dive [CHALLENGE: ex1] wrap up",
			want: []Page{
				{Text: "intro", QuizID: "q1"},
				{Text: "middle", AutoAdvance: true},
				{Text: "deep dive", ExerciseID: "ex1"},
				{Text: "wrap up"},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Segment(tc.raw)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Segment(%q)\n got: %+v\nwant: %+v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestPageGated(t *testing.T) {
	if (Page{Text: "x"}).Gated() {
		t.Error("unbound page reported gated")
	}
	if !(Page{QuizID: "q"}).Gated() {
		t.Error("quiz page not gated")
	}
	if !(Page{ExerciseID: "e"}).Gated() {
		t.Error("exercise page not gated")
	}
}
