package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func greetContext() *Context {
	ctx := NewContext(map[string]any{"name": "Alice"})
	ctx.RecordStep("greet", map[string]any{"greeting": "Hi!"})
	return ctx
}

func TestEvaluateRoots(t *testing.T) {
	t.Run("input path", func(t *testing.T) {
		value, err := Evaluate("{{input.name}}", greetContext())
		assert.NoError(t, err)
		assert.Equal(t, "Alice", value)
	})

	t.Run("steps by index", func(t *testing.T) {
		value, err := Evaluate("{{steps[0].greeting}}", greetContext())
		assert.NoError(t, err)
		assert.Equal(t, "Hi!", value)
	})

	t.Run("steps by name", func(t *testing.T) {
		value, err := Evaluate("{{stepsByName.greet.greeting}}", greetContext())
		assert.NoError(t, err)
		assert.Equal(t, "Hi!", value)
	})

	t.Run("previous step", func(t *testing.T) {
		value, err := Evaluate("{{previousStep.greeting}}", greetContext())
		assert.NoError(t, err)
		assert.Equal(t, "Hi!", value)
	})

	t.Run("bare step name addresses stepsByName", func(t *testing.T) {
		value, err := Evaluate("{{greet.greeting}}", greetContext())
		assert.NoError(t, err)
		assert.Equal(t, "Hi!", value)
	})

	t.Run("reserved root wins over a step named input", func(t *testing.T) {
		ctx := NewContext(map[string]any{"name": "Alice"})
		ctx.RecordStep("input", map[string]any{"name": "shadowed"})

		value, err := Evaluate("{{input.name}}", ctx)
		assert.NoError(t, err)
		assert.Equal(t, "Alice", value)

		value, err = Evaluate("{{stepsByName.input.name}}", ctx)
		assert.NoError(t, err)
		assert.Equal(t, "shadowed", value)
	})
}

func TestEvaluateForms(t *testing.T) {
	t.Run("works without delimiters", func(t *testing.T) {
		value, err := Evaluate("input.name", greetContext())
		assert.NoError(t, err)
		assert.Equal(t, "Alice", value)
	})

	t.Run("tolerates whitespace inside delimiters", func(t *testing.T) {
		value, err := Evaluate("{{ input.name }}", greetContext())
		assert.NoError(t, err)
		assert.Equal(t, "Alice", value)
	})

	t.Run("preserves non-string types", func(t *testing.T) {
		ctx := NewContext(map[string]any{"count": float64(42)})
		value, err := Evaluate("{{input.count}}", ctx)
		assert.NoError(t, err)
		assert.Equal(t, float64(42), value)
	})

	t.Run("bracket indices inside a path part", func(t *testing.T) {
		ctx := NewContext(map[string]any{
			"items": []any{
				[]any{"zero", "one"},
			},
		})
		value, err := Evaluate("{{input.items[0][1]}}", ctx)
		assert.NoError(t, err)
		assert.Equal(t, "one", value)
	})

	t.Run("root value with no further segments", func(t *testing.T) {
		value, err := Evaluate("{{previousStep}}", greetContext())
		assert.NoError(t, err)
		assert.Equal(t, map[string]any{"greeting": "Hi!"}, value)
	})
}

func TestEvaluateErrors(t *testing.T) {
	t.Run("null traversal", func(t *testing.T) {
		ctx := NewContext(map[string]any{"user": nil})
		_, err := Evaluate("{{input.user.name}}", ctx)
		assert.ErrorIs(t, err, ErrNullTraversal)
		assert.ErrorContains(t, err, "name")
	})

	t.Run("previous step absent before the first step", func(t *testing.T) {
		ctx := NewContext(map[string]any{})
		_, err := Evaluate("{{previousStep.greeting}}", ctx)
		assert.ErrorIs(t, err, ErrNullTraversal)
	})

	t.Run("non-indexable intermediate", func(t *testing.T) {
		ctx := NewContext(map[string]any{"name": "Alice"})
		_, err := Evaluate("{{input.name.first}}", ctx)
		assert.ErrorIs(t, err, ErrNotIndexable)
		assert.ErrorContains(t, err, "string")
	})

	t.Run("missing property lists available keys", func(t *testing.T) {
		ctx := NewContext(map[string]any{"name": "Alice", "age": 30})
		_, err := Evaluate("{{input.email}}", ctx)
		assert.ErrorIs(t, err, ErrUnknownProperty)
		assert.ErrorContains(t, err, "available: age, name")
	})

	t.Run("unknown step name lists declared steps", func(t *testing.T) {
		_, err := Evaluate("{{analyze.sentiment}}", greetContext())
		assert.ErrorIs(t, err, ErrUnknownProperty)
		assert.ErrorContains(t, err, "available: greet")
	})

	t.Run("sequence index out of range", func(t *testing.T) {
		_, err := Evaluate("{{steps[3].greeting}}", greetContext())
		assert.ErrorIs(t, err, ErrUnknownProperty)
		assert.ErrorContains(t, err, "0..0")
	})

	t.Run("non-numeric sequence index", func(t *testing.T) {
		_, err := Evaluate("{{steps.greet}}", greetContext())
		assert.ErrorIs(t, err, ErrNotIndexable)
	})

	t.Run("malformed expressions", func(t *testing.T) {
		for _, expr := range []string{"", "{{}}", "a..b", "a[", "a[]", "a]b"} {
			_, err := Evaluate(expr, greetContext())
			assert.ErrorIs(t, err, ErrBadExpression, expr)
		}
	})
}
