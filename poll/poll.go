// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package poll

import (
	"context"
	"log/slog"
	"time"
)

// Func is one pass of a loop.
type Func func(ctx context.Context) error

type loop struct {
	name   string
	wake   <-chan struct{}
	logger *slog.Logger
}

// Option configures a loop.
type Option func(*loop)

// WithName labels the loop in log lines.
func WithName(name string) Option {
	return func(l *loop) {
		l.name = name
	}
}

// WithWake triggers an extra pass whenever wake receives.
func WithWake(wake <-chan struct{}) Option {
	return func(l *loop) {
		l.wake = wake
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *loop) {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
	}
}

// Run calls fn once immediately and then every interval until ctx is done.
// Errors from fn are logged and do not stop the loop. Run returns nil when
// ctx is cancelled.
func Run(ctx context.Context, interval time.Duration, fn Func, opts ...Option) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	l := &loop{name: "poll", logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	logger := l.logger.With("component", "poll", "loop", l.name)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	pass := func(trigger string) {
		start := time.Now()
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			logger.Error("pass failed", "trigger", trigger, "err", err)
			return
		}
		logger.Debug("pass complete", "trigger", trigger, "elapsed", time.Since(start))
	}

	logger.Info("starting", "interval", interval)
	pass("start")
	for {
		select {
		case <-ctx.Done():
			logger.Info("stopped")
			return nil
		case <-ticker.C:
			pass("interval")
		case _, ok := <-l.wake:
			if !ok {
				// Closed wake channel: keep ticking.
				l.wake = nil
				continue
			}
			pass("wake")
		}
	}
}
