package interview

import (
	"fmt"
	"strings"

	"github.com/futig/interview-mentor/internal/entity"
)

const (
	PosturePrompt = "Analyze this candidate's posture and body language in a mock interview setting. " +
		"Provide 2-3 brief, constructive tips for improvement. Focus on professional presentation."

	PostureMessagePrefix = "📸 **Posture & Body Language Feedback:**\n"

	FallbackCompletion = "Thank you for completing the interview! That concludes our session. You've done well."
)

// QAPair is one answered question, in the order asked
type QAPair struct {
	Question string
	Answer   string
}

func questionsPrompt(role string, level entity.Level, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an experienced HR interviewer. Generate exactly %d interview questions for a %s level %s position.\n\n",
		count, level, role)
	b.WriteString("Make the questions:\n")
	b.WriteString("- Realistic and relevant to the role\n")
	b.WriteString("- Appropriate for the experience level\n")
	b.WriteString("- Professional and clear\n")
	b.WriteString("- Varied in type (behavioral, technical, situational)\n\n")
	fmt.Fprintf(&b, "For %s level positions:\n", level)
	b.WriteString("- Entry Level: Focus on basic knowledge, learning ability, motivation, and potential\n")
	b.WriteString("- Mid Level: Include technical skills, problem-solving, past experience, and teamwork\n")
	b.WriteString("- Senior Level: Cover leadership, architecture, mentoring, and strategic thinking\n")
	b.WriteString("- Executive Level: Focus on vision, leadership, business impact, and strategic planning\n\n")
	b.WriteString("Return ONLY the questions, each on a new line, without numbers or bullet points.\n\n")
	fmt.Fprintf(&b, "Role: %s\nExperience Level: %s", role, level)

	return b.String()
}

func feedbackPrompt(question, answer, next string) string {
	return fmt.Sprintf("As an experienced interviewer, provide brief constructive feedback (2-3 sentences) "+
		"on this candidate's response to the question \"%s\": \"%s\". Then ask the next question: \"%s\"",
		question, answer, next)
}

// finalPrompt asks for the closing assessment. The answered pairs are included
// so the model has the responses it is asked to assess.
func finalPrompt(role string, level entity.Level, pairs []QAPair) string {
	var b strings.Builder

	b.WriteString("As an experienced interviewer, provide a brief final assessment (3-4 sentences) of this candidate's " +
		"overall interview performance based on their responses. Be constructive and encouraging.")

	if len(pairs) > 0 {
		fmt.Fprintf(&b, "\n\nPosition: %s level %s\n", level, role)
		for i, p := range pairs {
			fmt.Fprintf(&b, "\nQ%d: %s\nA%d: %s\n", i+1, p.Question, i+1, p.Answer)
		}
	}

	return b.String()
}

func greeting(role string, level entity.Level, questions []string) string {
	return fmt.Sprintf("Hello! I'm your AI interviewer. Today we'll be conducting a %s level interview for a %s position. "+
		"I'll ask you %d questions tailored specifically for this role. Take your time with each response. "+
		"Let's begin with the first question: %s",
		level, role, len(questions), questions[0])
}

func fallbackFeedback(next string) string {
	return "Thank you for that response. Let me ask you the next question: " + next
}

func postureMessage(feedback string) string {
	return PostureMessagePrefix + feedback
}

// answeredPairs zips the questions with candidate answers in transcript order
func answeredPairs(s *entity.Session) []QAPair {
	pairs := make([]QAPair, 0, len(s.Questions))
	i := 0
	for _, m := range s.Transcript {
		if m.Origin != entity.MessageOriginCandidate {
			continue
		}
		if i >= len(s.Questions) {
			break
		}
		pairs = append(pairs, QAPair{Question: s.Questions[i], Answer: m.Text})
		i++
	}
	return pairs
}
