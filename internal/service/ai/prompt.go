package ai

import (
	"github.com/openai/openai-go"

	"github.com/minqi/ai-chat/backend/internal/model/chat"
	"github.com/minqi/ai-chat/backend/internal/model/persona"
)

// assembleMessages builds the outbound message list: the persona system
// message, the recent turns in chronological order, then the current
// user message. Turns tagged with the user role become user messages;
// any other role is the assistant's.
func assembleMessages(p persona.Persona, history []chat.Turn, userMessage string) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(p.SystemPrompt))

	for _, turn := range history {
		if turn.Role == chat.RoleUser {
			messages = append(messages, openai.UserMessage(turn.Content))
		} else {
			messages = append(messages, openai.AssistantMessage(turn.Content))
		}
	}

	return append(messages, openai.UserMessage(userMessage))
}
