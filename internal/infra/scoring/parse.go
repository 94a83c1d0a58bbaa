package scoring

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"assessment-quiz-service/internal/domain"
)

const (
	MinScore = 0
	MaxScore = 10
)

// leadingScore matches "7", "Score: 7", "7/10", "Score: 7 / 10 - good answer".
// The number must be followed by a denominator, whitespace or the end of the reply.
var leadingScore = regexp.MustCompile(`(?is)^\s*(?:score\s*[:=]?\s*)?(-?\d+(?:\.\d+)?)(?:\s*/\s*(\d+))?(?:\s(.*))?$`)

// otherScale matches a range ("3-5", "3 to 5") or a scale ("out of 5") right after the number.
var otherScale = regexp.MustCompile(`(?i)^(?:(?:-|to\s)\s*\d|out\s+of\s+(\d+))`)

type scoreReply struct {
	Score    *json.Number `json:"score"`
	Feedback string       `json:"feedback"`
}

// ParseScore extracts the score from a model reply. The JSON contract
// {"score": n} is preferred; otherwise the reply must start with the number.
// Anything else, including fractions and values outside 0-10, is ErrScoring.
func ParseScore(reply string) (int, error) {
	text := stripFence(strings.TrimSpace(reply))
	if text == "" {
		return 0, fmt.Errorf("%w: empty reply", domain.ErrScoring)
	}

	var raw string
	if strings.HasPrefix(text, "{") {
		var parsed scoreReply
		if err := json.Unmarshal([]byte(text), &parsed); err != nil {
			return 0, fmt.Errorf("%w: decode reply: %w", domain.ErrScoring, err)
		}
		if parsed.Score == nil {
			return 0, fmt.Errorf("%w: reply has no score field", domain.ErrScoring)
		}
		raw = parsed.Score.String()
	} else {
		m := leadingScore.FindStringSubmatch(text)
		if m == nil {
			return 0, fmt.Errorf("%w: no leading score in %q", domain.ErrScoring, truncate(text, 40))
		}
		if m[2] != "" && m[2] != "10" {
			return 0, fmt.Errorf("%w: score given out of %s", domain.ErrScoring, m[2])
		}
		if m[2] == "" {
			if sm := otherScale.FindStringSubmatch(strings.TrimSpace(m[3])); sm != nil && sm[1] != "10" {
				return 0, fmt.Errorf("%w: score is not on the 0-10 scale in %q", domain.ErrScoring, truncate(text, 40))
			}
		}
		raw = m[1]
	}

	score, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: score %q is not a whole number", domain.ErrScoring, raw)
	}
	if score < MinScore || score > MaxScore {
		return 0, fmt.Errorf("%w: score %d outside %d-%d", domain.ErrScoring, score, MinScore, MaxScore)
	}
	return score, nil
}

func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
