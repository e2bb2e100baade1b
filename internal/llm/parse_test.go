package llm

import (
	"testing"

	"dbchat/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONFromMarkdown(t *testing.T) {
	payload := `{"databaseQuery": "SELECT 1", "generatePlot": false, "pythonCode": ""}`

	t.Run("json fence", func(t *testing.T) {
		response := "Use the following query.\n```json\n" + payload + "\n```\nHope this helps."
		assert.Equal(t, payload, ExtractJSONFromMarkdown(response))
	})

	t.Run("generic fence", func(t *testing.T) {
		response := "```\n" + payload + "\n```"
		assert.Equal(t, payload, ExtractJSONFromMarkdown(response))
	})

	t.Run("no fence returns input", func(t *testing.T) {
		assert.Equal(t, payload, ExtractJSONFromMarkdown(payload))
	})

	t.Run("unterminated fence returns input", func(t *testing.T) {
		response := "```json\n" + payload
		assert.Equal(t, response, ExtractJSONFromMarkdown(response))
	})
}

func TestParseResult(t *testing.T) {
	response := "```json\n" +
		`{"databaseQuery": "SELECT name FROM user", "generatePlot": true, "pythonCode": "print('hi')"}` +
		"\n```"

	result, err := ParseResult(response)

	require.NoError(t, err)
	assert.Equal(t, "SELECT name FROM user", result.DatabaseQuery)
	assert.True(t, result.GeneratePlot)
	assert.Equal(t, "print('hi')", result.PythonCode)
}

func TestParseResult_QueryOnlyPlot(t *testing.T) {
	result, err := ParseResult(`{"databaseQuery": "", "generatePlot": true, "pythonCode": "plt.show()"}`)

	require.NoError(t, err)
	assert.Empty(t, result.DatabaseQuery)
	assert.True(t, result.GeneratePlot)
}

func TestParseResult_Malformed(t *testing.T) {
	_, err := ParseResult("here is your query: SELECT * FROM user")

	var malformed *apperr.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.True(t, apperr.Retryable(err))
}
