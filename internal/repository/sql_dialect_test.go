package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildLikeConditionByDialect(t *testing.T) {
	condition, argCount := buildLikeConditionByDialect("sqlite", []string{"phone", " ", "nickname"})
	assert.Equal(t, 2, argCount)
	assert.Equal(t, `phone LIKE ? ESCAPE '\' OR nickname LIKE ? ESCAPE '\'`, condition)

	condition, argCount = buildLikeConditionByDialect("postgres", []string{"name"})
	assert.Equal(t, 1, argCount)
	assert.Equal(t, `name ILIKE ? ESCAPE '\'`, condition)
}

func TestDBDialectNameDefaultsToSQLite(t *testing.T) {
	assert.Equal(t, "sqlite", dbDialectName(nil))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%\_off`, escapeLike("100%_off"))
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%abc%", 3)
	assert.Len(t, args, 3)
	assert.Equal(t, "%abc%", args[2])
}
