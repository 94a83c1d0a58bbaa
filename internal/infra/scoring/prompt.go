package scoring

import "fmt"

const systemInstruction = `Evaluate the following answer and provide a score (0-10).
Reply with a JSON object only: {"score": <integer 0-10>, "feedback": "<one sentence>"}.`

func userMessage(question, answer string) string {
	return fmt.Sprintf("Question: %s\nAnswer: %s", question, answer)
}
