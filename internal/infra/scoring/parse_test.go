package scoring

import (
	"errors"
	"testing"

	"assessment-quiz-service/internal/domain"
)

func TestParseScoreAccepted(t *testing.T) {
	cases := map[string]int{
		`{"score": 7, "feedback": "solid"}`:            7,
		"```json\n{\"score\": 10}\n```":                10,
		"8":                                            8,
		"Score: 6/10 - misses the happens-before rule": 6,
		"score = 0":                                    0,
		"  9 / 10 good":                                9,
		"7 out of 10":                                  7,
		"5\nThe answer covers the basics.":             5,
	}
	for reply, want := range cases {
		got, err := ParseScore(reply)
		if err != nil {
			t.Fatalf("ParseScore(%q) returned error: %v", reply, err)
		}
		if got != want {
			t.Fatalf("ParseScore(%q) = %d, want %d", reply, got, want)
		}
	}
}

func TestParseScoreRejected(t *testing.T) {
	replies := []string{
		"",
		"The answer deserves a 7.",
		`{"feedback": "no score"}`,
		`{"score": "seven"}`,
		`{"score": 7.5}`,
		"11/10",
		"-1",
		"7.5",
		"{not json",
		"7/100",
		"Score: 4 out of 5",
		"3-5 depending",
		"3 - 5",
		"6 to 8",
		"7abc",
		"8/",
	}
	for _, reply := range replies {
		if _, err := ParseScore(reply); !errors.Is(err, domain.ErrScoring) {
			t.Fatalf("ParseScore(%q): expected scoring error, got %v", reply, err)
		}
	}
}
