// Package llm turns a provider-agnostic conversation into each provider's
// wire shape and parses the heterogeneous responses back into one result.
package llm

// Exchange is one past chat turn: the user's natural-language prompt and the
// raw model response that answered it.
type Exchange struct {
	Prompt   string
	Response string
}

// Conversation is the provider-agnostic input of a single model call. It is
// rebuilt from scratch on every retry attempt so the model always sees the
// full mistake history of the current turn.
type Conversation struct {
	System  string
	History []Exchange
	Query   string
	Errors  []string // accumulated feedback from failed attempts, oldest first
}
