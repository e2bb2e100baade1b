package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSafeSelect(t *testing.T) {
	assert.True(t, IsSafeSelect("SELECT * FROM user"))
	assert.True(t, IsSafeSelect("SELECT name, count(*) FROM user GROUP BY name"))
	assert.True(t, IsSafeSelect("SELECT u.name FROM user u JOIN orders o ON o.user_id = u.id"))

	assert.False(t, IsSafeSelect("DROP TABLE user"))
	assert.False(t, IsSafeSelect("DELETE FROM user"))
	assert.False(t, IsSafeSelect("UPDATE user SET name = 'x'"))
	assert.False(t, IsSafeSelect("INSERT INTO user (name) VALUES ('x')"))
	assert.False(t, IsSafeSelect("this is not sql"))
	assert.False(t, IsSafeSelect(""))
}
