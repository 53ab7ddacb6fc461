// go-rfidgeek
// Copyright (c) 2025 The go-rfidgeek Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-rfidgeek.
//
// go-rfidgeek is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-rfidgeek is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-rfidgeek; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package transport provides internal transport utilities
package transport

import (
	"context"
	"fmt"
	"time"
)

// RetryOperation is a single attempt of a retried operation
type RetryOperation[T any] func() (T, error)

// RetryConfig configures retry behavior
type RetryConfig struct {
	// ShouldRetry reports whether err is worth another attempt. A nil
	// ShouldRetry retries every error.
	ShouldRetry func(error) bool
	// OnRetry runs before each new attempt
	OnRetry     func(attempt int, err error)
	Description string
	MaxRetries  int
	RetryDelay  time.Duration
}

// WithRetry runs operation until it succeeds, fails with an error
// ShouldRetry rejects, or MaxRetries further attempts have been made.
// Waiting between attempts stops early when ctx is cancelled.
func WithRetry[T any](ctx context.Context, config RetryConfig, operation RetryOperation[T]) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			if config.OnRetry != nil {
				config.OnRetry(attempt, lastErr)
			}
			if err := sleep(ctx, config.RetryDelay); err != nil {
				return zero, err
			}
		}

		result, err := operation()
		if err == nil {
			return result, nil
		}
		if config.ShouldRetry != nil && !config.ShouldRetry(err) {
			return zero, err
		}
		lastErr = err
	}

	return zero, handleRetriesExhausted(config, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func handleRetriesExhausted(config RetryConfig, lastErr error) error {
	desc := config.Description
	if desc == "" {
		desc = "operation"
	}
	return fmt.Errorf("%s failed after %d attempts: %w", desc, config.MaxRetries+1, lastErr)
}
