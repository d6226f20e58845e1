package engine

import (
	"context"
	"time"
)

// Pacer turns the virtual schedule into wall-clock time: it forwards each
// instruction to Next and then blocks for the instruction's duration.
type Pacer struct {
	Next Engine
	// Speed multiplies playback rate; values <= 0 mean 1.
	Speed float64

	sleep func(ctx context.Context, d time.Duration) error
}

func NewPacer(next Engine, speed float64) *Pacer {
	return &Pacer{Next: next, Speed: speed, sleep: sleepContext}
}

func (p *Pacer) Execute(ctx context.Context, in Instruction) error {
	if p.Next != nil {
		if err := p.Next.Execute(ctx, in); err != nil {
			return err
		}
	}
	speed := p.Speed
	if speed <= 0 {
		speed = 1
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return sleep(ctx, seconds(in.Duration/speed))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
