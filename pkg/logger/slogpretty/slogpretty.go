// Package slogpretty предоставляет цветной обработчик для `slog`, удобный
// для чтения при локальном запуске, и фабрику логгеров для бинарников сервиса.
package slogpretty

import (
	"context"
	"encoding/json"
	"io"
	stdLog "log"
	"log/slog"
	"os"

	"github.com/fatih/color"
)

// Окружения, от которых зависит формат логов.
const (
	envLocal = "local" // Цветной вывод, уровень debug.
	envDev   = "dev"   // JSON, уровень debug.
	envProd  = "prod"  // JSON, уровень info.
)

type PrettyHandlerOptions struct {
	SlogOpts *slog.HandlerOptions // Стандартные опции slog, например уровень.
}

// PrettyHandler печатает одну цветную строку на запись, а атрибуты
// выводит отформатированным JSON.
type PrettyHandler struct {
	slog.Handler
	l      *stdLog.Logger // Стандартный `log`, чтобы не уйти в рекурсию.
	attrs  []slog.Attr    // Атрибуты из `WithAttrs`, ключи уже с префиксом групп.
	groups []string       // Открытые группы, от внешней к внутренней.
}

func (opts PrettyHandlerOptions) NewPrettyHandler(out io.Writer) *PrettyHandler {
	return &PrettyHandler{
		Handler: slog.NewJSONHandler(out, opts.SlogOpts),
		l:       stdLog.New(out, "", 0),
	}
}

// SetupLogger создает логгер для окружения `env`. Неизвестное окружение
// получает продовый JSON-обработчик.
func SetupLogger(env string) *slog.Logger {
	return SetupLoggerTo(env, os.Stdout)
}

// SetupLoggerTo делает то же самое, но пишет в `out`; нужен тестам.
func SetupLoggerTo(env string, out io.Writer) *slog.Logger {
	switch env {
	case envLocal:
		opts := PrettyHandlerOptions{
			SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug},
		}

		return slog.New(opts.NewPrettyHandler(out))
	case envDev:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

// Handle форматирует запись и выводит ее одной строкой.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	// Уровень лога с цветом.
	level := r.Level.String() + ":"

	switch r.Level {
	case slog.LevelDebug:
		level = color.MagentaString(level)
	case slog.LevelInfo:
		level = color.BlueString(level)
	case slog.LevelWarn:
		level = color.YellowString(level)
	case slog.LevelError:
		level = color.RedString(level)
	}

	// Атрибуты записи и обработчика собираем в одну мапу.
	fields := make(map[string]any, r.NumAttrs()+len(h.attrs))

	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Any()
	}

	r.Attrs(func(a slog.Attr) bool {
		fields[h.key(a.Key)] = a.Value.Any()
		return true
	})

	var b []byte

	if len(fields) > 0 {
		var err error

		b, err = json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return err
		}
	}

	h.l.Println(
		r.Time.Format("[15:04:05.000]"),
		level,
		color.CyanString(r.Message),
		color.WhiteString(string(b)),
	)

	return nil
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)

	for _, a := range attrs {
		a.Key = h.key(a.Key)
		merged = append(merged, a)
	}

	return &PrettyHandler{
		Handler: h.Handler.WithAttrs(attrs),
		l:       h.l,
		attrs:   merged,
		groups:  h.groups,
	}
}

// WithGroup не рисует группы отдельно: ключи последующих атрибутов
// получают префикс `группа.`.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	groups := make([]string, 0, len(h.groups)+1)
	groups = append(groups, h.groups...)
	groups = append(groups, name)

	return &PrettyHandler{
		Handler: h.Handler.WithGroup(name),
		l:       h.l,
		attrs:   h.attrs,
		groups:  groups,
	}
}

func (h *PrettyHandler) key(k string) string {
	for i := len(h.groups) - 1; i >= 0; i-- {
		k = h.groups[i] + "." + k
	}

	return k
}
