package normalize

import (
	"strings"
	"testing"
)

func TestForSpeech(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "markup stripped and abbreviation expanded",
			input: "**Warning:** take 10 mg",
			want:  "Warning: take 10 milligrams",
		},
		{
			name:  "html tags removed",
			input: "<p>Your <b>blood pressure</b> looks fine</p>",
			want:  "Your blood pressure looks fine",
		},
		{
			name:  "italic unwrapped",
			input: "take this _daily_ with food",
			want:  "take this daily with food",
		},
		{
			name:  "bullets become sentences",
			input: "- drink water\n- rest well\n- call your Dr. tomorrow",
			want:  "drink water rest well call your Doctor tomorrow",
		},
		{
			name:  "numbered list",
			input: "1. check BP\n2. log HR",
			want:  "check blood pressure log heart rate",
		},
		{
			name:  "headings dropped",
			input: "## Medication plan\nTake 5 ml at night",
			want:  "Medication plan Take 5 milliliters at night",
		},
		{
			name:  "longest abbreviation wins",
			input: "reading was 120 mmHg",
			want:  "reading was 120 millimeters of mercury",
		},
		{
			name:  "abbreviation inside word untouched",
			input: "the pharmacology department",
			want:  "the pharmacology department",
		},
		{
			name:  "whitespace collapsed",
			input: "take   your\n\n\nmeds",
			want:  "take your medications",
		},
		{
			name:  "dosage schedule",
			input: "Amoxicillin 250 mg BID PRN",
			want:  "Amoxicillin 250 milligrams twice a day as needed",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForSpeech(tt.input)
			if got != tt.want {
				t.Errorf("ForSpeech(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestForSpeechIdempotent(t *testing.T) {
	inputs := []string{
		"**Warning:** take 10 mg",
		"<div>* item one\n* item two</div>",
		"check your BP and HR # now",
		"plain sentence with no markup",
		"Rx: 2 mcg __twice__ daily at 98.6 temp",
		"   \n\t  ",
	}

	for _, input := range inputs {
		once := ForSpeech(input)
		twice := ForSpeech(once)
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestForSpeechLeavesNoDelimiters(t *testing.T) {
	inputs := []string{
		"**bold** and _italic_ and <span>tagged</span>",
		"## heading\n- bullet",
		"__strong__ text",
	}
	for _, input := range inputs {
		got := ForSpeech(input)
		for _, delim := range []string{"**", "__", "<", ">", "##"} {
			if strings.Contains(got, delim) {
				t.Errorf("ForSpeech(%q) = %q still contains %q", input, got, delim)
			}
		}
	}
}
