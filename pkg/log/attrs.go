package log

import "log/slog"

func Endpoint[T ~string](name T) slog.Attr {
	return slog.String("endpoint", string(name))
}

func Chain[T ~string](name T) slog.Attr {
	return slog.String("chain", string(name))
}

func StepName[T ~string](name T) slog.Attr {
	return slog.String("step_name", string(name))
}

func StepIndex(idx int) slog.Attr {
	return slog.Int("step_index", idx)
}

func ExecutionID(id string) slog.Attr {
	return slog.String("execution_id", id)
}

func Status[T ~string](status T) slog.Attr {
	return slog.String("status", string(status))
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}
