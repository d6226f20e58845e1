package engine

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ivlev/slidereel/internal/element"
)

// LogEngine writes one log line per instruction. Plays are logged at info
// level, waits at debug level.
type LogEngine struct {
	Logger *log.Logger
}

func NewLogEngine(l *log.Logger) *LogEngine {
	return &LogEngine{Logger: l}
}

func (e *LogEngine) Execute(ctx context.Context, in Instruction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	kv := []any{
		"at", formatSeconds(in.At),
		"dur", formatSeconds(in.Duration),
		in.Source.Segment.String(), in.Source.SceneName,
		"phase", in.Source.Phase,
	}
	if in.Source.Unit >= 0 {
		kv = append(kv, "unit", in.Source.Unit)
	}
	if in.Op == OpWait {
		e.Logger.Debug("wait", kv...)
		return nil
	}
	kv = append(kv, "anims", describeBatch(in.Batch))
	if in.Batch.LagRatio > 0 {
		kv = append(kv, "lag", in.Batch.LagRatio)
	}
	e.Logger.Info("play", kv...)
	return nil
}

func describeBatch(b Batch) string {
	parts := make([]string, 0, len(b.Animations))
	for _, a := range b.Animations {
		target := "?"
		if a.Target != nil {
			target = a.Target.ID()
			if target == "" {
				target = element.Describe(a.Target)
			}
		}
		parts = append(parts, string(a.Effect)+"("+target+")")
	}
	return strings.Join(parts, " ")
}

func formatSeconds(s float64) string {
	return seconds(s).Round(time.Millisecond).String()
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
