package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileTemplate(t *testing.T) {
	t.Run("substitutes a whole-string expression", func(t *testing.T) {
		ctx := NewContext(map[string]any{"name": "Alice"})
		out, err := CompileTemplate("{{input.name}}", ctx)
		assert.NoError(t, err)
		assert.Equal(t, "Alice", out)
	})

	t.Run("preserves the evaluated value's type", func(t *testing.T) {
		ctx := NewContext(map[string]any{
			"count": float64(3),
			"flag":  true,
			"tags":  []any{"a", "b"},
		})

		out, err := CompileTemplate("{{input.count}}", ctx)
		assert.NoError(t, err)
		assert.Equal(t, float64(3), out)

		out, err = CompileTemplate("{{input.flag}}", ctx)
		assert.NoError(t, err)
		assert.Equal(t, true, out)

		out, err = CompileTemplate("{{input.tags}}", ctx)
		assert.NoError(t, err)
		assert.Equal(t, []any{"a", "b"}, out)
	})

	t.Run("passes plain strings through", func(t *testing.T) {
		out, err := CompileTemplate("hello", NewContext(nil))
		assert.NoError(t, err)
		assert.Equal(t, "hello", out)
	})

	t.Run("passes non-string scalars through", func(t *testing.T) {
		ctx := NewContext(nil)
		for _, v := range []any{nil, true, float64(1.5), 7} {
			out, err := CompileTemplate(v, ctx)
			assert.NoError(t, err)
			assert.Equal(t, v, out)
		}
	})

	t.Run("compiles nested structures element-wise", func(t *testing.T) {
		ctx := NewContext(map[string]any{"name": "Alice", "age": float64(30)})
		tmpl := map[string]any{
			"user": map[string]any{
				"name":  "{{input.name}}",
				"label": "static",
			},
			"values": []any{"{{input.age}}", "x"},
		}

		out, err := CompileTemplate(tmpl, ctx)
		assert.NoError(t, err)
		assert.Equal(t, map[string]any{
			"user": map[string]any{
				"name":  "Alice",
				"label": "static",
			},
			"values": []any{float64(30), "x"},
		}, out)
	})

	t.Run("rejects embedded template expressions", func(t *testing.T) {
		ctx := NewContext(map[string]any{"name": "Alice"})
		for _, s := range []string{
			"Hello {{input.name}}!",
			"{{input.name}} and {{input.name}}",
			"prefix {{input.name}}",
		} {
			_, err := CompileTemplate(s, ctx)
			assert.ErrorIs(t, err, ErrEmbeddedTemplate, s)
		}
	})

	t.Run("propagates evaluation errors from nested values", func(t *testing.T) {
		ctx := NewContext(map[string]any{"name": "Alice"})
		tmpl := map[string]any{
			"inner": []any{"{{input.missing}}"},
		}
		_, err := CompileTemplate(tmpl, ctx)
		assert.ErrorIs(t, err, ErrUnknownProperty)
	})
}
