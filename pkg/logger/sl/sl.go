// Package sl holds small slog attribute helpers shared by all layers.
package sl

import "log/slog"

// Err renders err under the "error" key. A nil error yields an empty value.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}

	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
