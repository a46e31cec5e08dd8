package essay

// Prompt is one of the Common App personal essay prompts.
type Prompt struct {
	Number int    `json:"number"`
	Short  string `json:"short"`
	Text   string `json:"text"`
}

const WordLimit = 650

var prompts = []Prompt{
	{1, "Background, identity, interest, or talent",
		"Some students have a background, identity, interest, or talent that is so meaningful they believe their application would be incomplete without it. If this sounds like you, then please share your story."},
	{2, "Overcoming challenges",
		"The lessons we take from obstacles we encounter can be fundamental to later success. Recount a time when you faced a challenge, setback, or failure. How did it affect you, and what did you learn from the experience?"},
	{3, "Questioning or challenging a belief or idea",
		"Reflect on a time when you questioned or challenged a belief or idea. What prompted your thinking? What was the outcome?"},
	{4, "Gratitude and its effect on you",
		"Reflect on something that someone has done for you that has made you happy or thankful in a surprising way. How has this gratitude affected or motivated you?"},
	{5, "Personal growth or new understanding",
		"Discuss an accomplishment, event, or realization that sparked a period of personal growth and a new understanding of yourself or others."},
	{6, "Topic of such interest you lose track of time",
		"Describe a topic, idea, or concept you find so engaging that it makes you lose all track of time. Why does it captivate you? What or who do you turn to when you want to learn more?"},
	{7, "Topic of your choice",
		"Share an essay on any topic of your choice. It can be one you've already written, one that responds to a different prompt, or one of your own design."},
}

// Prompts returns the prompts in order.
func Prompts() []Prompt {
	out := make([]Prompt, len(prompts))
	copy(out, prompts)
	return out
}

func PromptByNumber(n int) (Prompt, bool) {
	if n < 1 || n > len(prompts) {
		return Prompt{}, false
	}
	return prompts[n-1], true
}
