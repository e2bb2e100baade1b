package llm

import (
	"encoding/json"
	"strings"

	"dbchat/internal/apperr"
)

// ParsedResult is the structured payload the model is instructed to answer
// with. DatabaseQuery is empty when the model intends to only plot,
// PythonCode when no plot is requested.
type ParsedResult struct {
	DatabaseQuery string `json:"databaseQuery"`
	GeneratePlot  bool   `json:"generatePlot"`
	PythonCode    string `json:"pythonCode"`
}

// ExtractJSONFromMarkdown pulls the payload out of a fenced markdown block.
// Models often wrap the JSON in prose; the first "```json" fence wins, a bare
// "```" fence is the fallback, and without any fence the response is returned
// untouched.
func ExtractJSONFromMarkdown(response string) string {
	const jsonFence = "```json"
	const fence = "```"

	start := jsonFence
	idx := strings.Index(response, start)
	if idx == -1 {
		start = fence
		idx = strings.Index(response, start)
		if idx == -1 {
			return response
		}
	}

	rest := response[idx+len(start):]
	end := strings.Index(rest, fence)
	if end == -1 {
		return response
	}
	return strings.TrimSpace(rest[:end])
}

// ParseResult decodes a raw model response into a ParsedResult. A syntax
// error is a model mistake, reported as MalformedResponseError so the
// orchestration loop can feed it back.
func ParseResult(response string) (ParsedResult, error) {
	var result ParsedResult
	if err := json.Unmarshal([]byte(ExtractJSONFromMarkdown(response)), &result); err != nil {
		return ParsedResult{}, &apperr.MalformedResponseError{Message: err.Error()}
	}
	return result, nil
}
