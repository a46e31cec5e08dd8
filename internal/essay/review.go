package essay

import (
	"fmt"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/llm"
)

const reviewerInstruction = "You are an expert college admissions essay reviewer with years of experience helping students craft compelling Common Application essays. Provide detailed, constructive feedback that helps students improve their writing while maintaining their authentic voice."

// ReviewOptions are the sampling settings for an essay review.
var ReviewOptions = llm.Options{Temperature: llm.Temp(0.7), MaxTokens: 1500}

// ReviewMessages builds the conversation sent to the model for one draft.
func ReviewMessages(p Prompt, plainText string, wordCount int) []llm.Message {
	promptText := p.Text
	if promptText == "" {
		promptText = "Not specified"
	}

	user := fmt.Sprintf(`Please review this Common Application essay and provide detailed editorial feedback.

**Essay Prompt:** %s

**Word Count:** %d/%d words

**Essay Content:**
%s

**Please provide:**
1. **Overall Impression** (2-3 sentences on the essay's strengths and main areas for improvement)
2. **Content & Storytelling** (Does it answer the prompt? Is the story compelling? What specific details stand out or need enhancement?)
3. **Structure & Organization** (How well does it flow? Are transitions smooth? Does the opening hook and closing resonate?)
4. **Voice & Authenticity** (Does it sound genuine? Does the writer's personality come through? Any clichés to avoid?)
5. **Grammar & Mechanics** (Any grammatical issues, awkward phrasing, or word choice improvements?)
6. **Specific Suggestions** (3-5 concrete action items to improve the essay)
7. **Revised Opening Sentence** (Suggest a more compelling opening if needed)

Be encouraging but honest. Remember, this essay represents the student to admissions officers.`,
		promptText, wordCount, WordLimit, plainText)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: reviewerInstruction},
		{Role: llm.RoleUser, Content: user},
	}
}
