package persona

// Persona bundles an assistant identity with the system prompt that
// establishes it upstream.
type Persona struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SystemPrompt string `json:"-"`
}

// Well-known persona identifiers.
const (
	CodeAssistantID    = "code-assistant"
	GeneralAssistantID = "general-assistant"
)

// Seed provides the two built-in assistant personas.
func Seed() []Persona {
	return []Persona{
		{
			ID:   CodeAssistantID,
			Name: "Assistant",
			SystemPrompt: `You are a helpful coding assistant. When providing code examples:
1. Include clear comments explaining the code
2. Use proper formatting with markdown code blocks (` + "```" + `)
3. Specify the programming language
4. Add brief explanations before and after the code
5. Follow best practices and conventions`,
		},
		{
			ID:   GeneralAssistantID,
			Name: "Assistant",
			SystemPrompt: `You are a helpful AI assistant. Provide clear and concise responses.
Keep your answers natural and conversational. Only use code blocks when specifically
discussing code or technical concepts that require them.`,
		},
	}
}
