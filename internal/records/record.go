package records

import "gendonk/internal/services/openai"

// Record is one line of the training file.
type Record struct {
	Messages []openai.Message `json:"messages"`
}

// NewRecord builds the system/user/assistant triple for one row.
func NewRecord(systemPrompt, prompt, completion string) Record {
	return Record{Messages: []openai.Message{
		{Role: openai.RoleSystem, Content: systemPrompt},
		{Role: openai.RoleUser, Content: prompt},
		{Role: openai.RoleAssistant, Content: completion},
	}}
}
