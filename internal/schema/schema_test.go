package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workiq/weave/internal/schema"
)

func personSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
			"age":  map[string]any{"type": "number"},
		},
		"required": []any{"name"},
	}
}

func TestCompile(t *testing.T) {
	t.Run("compiles a valid schema", func(t *testing.T) {
		v, err := schema.Compile("person", personSchema())
		require.NoError(t, err)
		assert.NotNil(t, v)
	})

	t.Run("rejects an invalid schema document", func(t *testing.T) {
		_, err := schema.Compile("bad", map[string]any{
			"type": "not-a-type",
		})
		assert.ErrorIs(t, err, schema.ErrSchemaCompile)
		assert.ErrorContains(t, err, "bad")
	})
}

func TestValidate(t *testing.T) {
	v, err := schema.Compile("person", personSchema())
	require.NoError(t, err)

	t.Run("accepts a conforming value", func(t *testing.T) {
		assert.NoError(t, v.Validate(map[string]any{
			"name": "Alice",
			"age":  float64(30),
		}))
	})

	t.Run("rejects a missing required property", func(t *testing.T) {
		err := v.Validate(map[string]any{"age": float64(30)})
		require.Error(t, err)
		assert.ErrorContains(t, err, "person")
	})

	t.Run("rejects a wrong type", func(t *testing.T) {
		err := v.Validate(map[string]any{
			"name": "Alice",
			"age":  "thirty",
		})
		assert.Error(t, err)
	})
}
