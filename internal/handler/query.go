package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/workiq/weave/internal/engine"
	"github.com/workiq/weave/pkg/api"
)

// QueryRunner builds handlers that shell out to the workiq CLI (or any
// argv) and decode its JSON output
type QueryRunner struct {
	defaultTimeout time.Duration
}

var (
	ErrQueryFailed     = errors.New("query command failed")
	ErrQueryResultPath = errors.New("query result path matched nothing")
)

// NewQueryRunner creates a query handler factory with the given default
// timeout, used when a spec does not declare its own
func NewQueryRunner(defaultTimeout time.Duration) *QueryRunner {
	return &QueryRunner{
		defaultTimeout: defaultTimeout,
	}
}

// Handler returns the executable capability for a query endpoint
func (r *QueryRunner) Handler(spec *api.QuerySpec) engine.Handler {
	return func(ctx context.Context, input any) (any, error) {
		args := make([]string, len(spec.Args))
		for i, arg := range spec.Args {
			args[i] = substituteVars(arg, input)
		}

		timeout := r.defaultTimeout
		if spec.TimeoutMs > 0 {
			timeout = time.Duration(spec.TimeoutMs) * time.Millisecond
		}
		cctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var stdout, stderr bytes.Buffer
		cmd := exec.CommandContext(cctx, spec.Command, args...)
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			detail := strings.TrimSpace(stderr.String())
			if detail != "" {
				return nil, fmt.Errorf("%w: %s: %w (%s)",
					ErrQueryFailed, spec.Command, err, detail)
			}
			return nil, fmt.Errorf("%w: %s: %w",
				ErrQueryFailed, spec.Command, err)
		}

		return decodeQueryOutput(spec, stdout.Bytes())
	}
}

func decodeQueryOutput(spec *api.QuerySpec, out []byte) (any, error) {
	out = bytes.TrimSpace(out)

	if spec.ResultPath != "" {
		res := gjson.GetBytes(out, spec.ResultPath)
		if !res.Exists() {
			return nil, fmt.Errorf("%w: %s",
				ErrQueryResultPath, spec.ResultPath)
		}
		return res.Value(), nil
	}

	var decoded any
	if err := json.Unmarshal(out, &decoded); err == nil {
		return decoded, nil
	}

	// Non-JSON output is still usable downstream as a single field
	return map[string]any{"output": string(out)}, nil
}
