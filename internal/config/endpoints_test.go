package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workiq/weave/internal/config"
	"github.com/workiq/weave/pkg/api"
)

const endpointsYAML = `
endpoints:
  - name: sentiment
    promptHandler:
      model: gpt-4o-mini
      prompt: "Classify the sentiment of: {{input.text}}"
      temperature: 0.2
    inputSchema:
      type: object
      required: [text]
  - name: greet
    scriptHandler:
      script: 'return { greeting = "Hello " .. input.name .. "!" }'
  - name: tickets
    workiqHandler:
      command: workiq
      args: ["tickets", "--user", "{{input.user}}"]
      result_path: data.tickets
      timeout_ms: 5000
  - name: triage
    chainHandler:
      steps:
        - endpoint: tickets
          input:
            user: "{{input.user}}"
        - name: classify
          endpoint: sentiment
          input:
            text: "{{previousStep.output}}"
      output:
        sentiment: "{{classify.sentiment}}"
`

func writeEndpoints(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadEndpoints(t *testing.T) {
	defs, err := config.LoadEndpoints(writeEndpoints(t, endpointsYAML))
	require.NoError(t, err)
	require.Len(t, defs, 4)

	assert.Equal(t, api.Name("sentiment"), defs[0].Name)
	assert.Equal(t, api.KindPrompt, defs[0].Kind())
	assert.Equal(t, "gpt-4o-mini", defs[0].Prompt.Model)
	assert.NotNil(t, defs[0].InputSchema)

	assert.Equal(t, api.KindScript, defs[1].Kind())
	assert.Equal(t, api.KindQuery, defs[2].Kind())
	assert.Equal(t, "data.tickets", defs[2].Query.ResultPath)
	assert.Equal(t, int64(5000), defs[2].Query.TimeoutMs)

	require.Equal(t, api.KindChain, defs[3].Kind())
	chain := defs[3].Chain
	require.Len(t, chain.Steps, 2)
	assert.Equal(t, api.Name("tickets"), chain.Steps[0].Endpoint)
	assert.Equal(t, api.Name("classify"), chain.Steps[1].Name)
	assert.Equal(t, map[string]any{
		"sentiment": "{{classify.sentiment}}",
	}, chain.Output)
}

func TestLoadEndpointsErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadEndpoints(
			filepath.Join(t.TempDir(), "absent.yaml"),
		)
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := config.LoadEndpoints(writeEndpoints(t, "endpoints: ["))
		assert.Error(t, err)
	})

	t.Run("empty catalog", func(t *testing.T) {
		_, err := config.LoadEndpoints(writeEndpoints(t, "endpoints: []"))
		assert.ErrorIs(t, err, config.ErrNoEndpoints)
	})

	t.Run("invalid definition", func(t *testing.T) {
		_, err := config.LoadEndpoints(writeEndpoints(t, `
endpoints:
  - name: broken
`))
		assert.ErrorIs(t, err, api.ErrNoHandlerSpec)
	})

	t.Run("two handlers on one endpoint", func(t *testing.T) {
		_, err := config.LoadEndpoints(writeEndpoints(t, `
endpoints:
  - name: both
    scriptHandler:
      script: return 1
    workiqHandler:
      command: workiq
`))
		assert.ErrorIs(t, err, api.ErrManyHandlerSpecs)
	})

	t.Run("duplicate names", func(t *testing.T) {
		_, err := config.LoadEndpoints(writeEndpoints(t, `
endpoints:
  - name: twice
    scriptHandler:
      script: return 1
  - name: twice
    scriptHandler:
      script: return 2
`))
		assert.ErrorIs(t, err, config.ErrDuplicateEndpoint)
	})
}
