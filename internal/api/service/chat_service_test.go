package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateChatName(t *testing.T) {
	assert.Equal(t, "show all users", truncateChatName("show all users"))

	long := strings.Repeat("a", chatNameMaxLength+10)
	assert.Equal(t, strings.Repeat("a", chatNameMaxLength), truncateChatName(long))
}

func TestTruncateChatName_MultiByte(t *testing.T) {
	name := strings.Repeat("průměrná útrata za objednávky ", 3)
	truncated := truncateChatName(name)

	assert.True(t, utf8.ValidString(truncated))
	assert.Equal(t, chatNameMaxLength, utf8.RuneCountInString(truncated))
}
