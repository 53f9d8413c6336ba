// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrClosed is returned by a ReconnectingLink after Close.
var ErrClosed = errors.New("link closed")

// DefaultRetryInterval is the wait between failed connection attempts.
const DefaultRetryInterval = 3 * time.Second

// Dialer opens a fresh connection to the board.
type Dialer func() (Link, error)

// ReconnectingLink keeps a Link open across board resets and cable pulls.
// When the current connection reports ErrLinkDown it is closed and dialed
// again, retrying every interval until it succeeds or ctx ends. Other
// errors, such as malformed angle lines, are passed through.
type ReconnectingLink struct {
	dial     Dialer
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	cur    Link
	closed bool
}

// NewReconnectingLink does not dial; the first NextAngle does.
func NewReconnectingLink(dial Dialer, interval time.Duration, logger *slog.Logger) *ReconnectingLink {
	if interval <= 0 {
		interval = DefaultRetryInterval
	}
	return &ReconnectingLink{dial: dial, interval: interval, logger: logger}
}

// NextAngle returns the next angle, reconnecting as often as needed.
func (r *ReconnectingLink) NextAngle(ctx context.Context) (float64, error) {
	for {
		link, err := r.connect(ctx)
		if err != nil {
			return 0, err
		}
		angle, err := link.NextAngle(ctx)
		if err == nil || ctx.Err() != nil || !errors.Is(err, ErrLinkDown) {
			return angle, err
		}
		r.logger.Warn("disconnected, retrying", "error", err)
		r.drop(link)
	}
}

// Command forwards to the current connection. While disconnected it fails
// with ErrLinkDown.
func (r *ReconnectingLink) Command(target, gain float64) error {
	r.mu.Lock()
	link := r.cur
	r.mu.Unlock()
	if link == nil {
		return fmt.Errorf("command: %w", ErrLinkDown)
	}
	return link.Command(target, gain)
}

// Close closes the current connection and stops reconnecting.
func (r *ReconnectingLink) Close() error {
	r.mu.Lock()
	r.closed = true
	link := r.cur
	r.cur = nil
	r.mu.Unlock()
	if link == nil {
		return nil
	}
	return link.Close()
}

func (r *ReconnectingLink) connect(ctx context.Context) (Link, error) {
	for {
		r.mu.Lock()
		closed, link := r.closed, r.cur
		r.mu.Unlock()
		if closed {
			return nil, ErrClosed
		}
		if link != nil {
			return link, nil
		}

		link, err := r.dial()
		if err == nil {
			r.mu.Lock()
			if r.closed {
				r.mu.Unlock()
				_ = link.Close()
				return nil, ErrClosed
			}
			r.cur = link
			r.mu.Unlock()
			r.logger.Info("connected")
			return link, nil
		}

		r.logger.Warn("connect failed", "error", err, "retry_in", r.interval)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.interval):
		}
	}
}

func (r *ReconnectingLink) drop(link Link) {
	r.mu.Lock()
	if r.cur == link {
		r.cur = nil
	}
	r.mu.Unlock()
	_ = link.Close()
}
