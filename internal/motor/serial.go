// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	serial "github.com/jacobsa/go-serial/serial"
)

// SerialLink speaks the line protocol with the motor driver board.
type SerialLink struct {
	port   io.ReadWriteCloser
	logger *slog.Logger

	lines   chan string
	readErr error // set before lines is closed

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// OpenSerial opens the board's serial port (8N1) and starts reading angle
// reports.
func OpenSerial(portName string, baud int, logger *slog.Logger) (*SerialLink, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	logger.Info("serial port opened", "port", portName, "baud", baud)

	return NewSerialLink(port, logger), nil
}

// NewSerialLink runs the protocol over an already open stream.
func NewSerialLink(port io.ReadWriteCloser, logger *slog.Logger) *SerialLink {
	l := &SerialLink{
		port:   port,
		logger: logger,
		lines:  make(chan string, 16),
	}
	go l.readLoop()
	return l
}

func (l *SerialLink) readLoop() {
	reader := bufio.NewReader(l.port)
	for {
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			l.lines <- line
		}
		if err != nil {
			l.readErr = err
			close(l.lines)
			return
		}
	}
}

// NextAngle returns the next ANGLE report. Other lines from the board are
// logged at debug level and skipped.
func (l *SerialLink) NextAngle(ctx context.Context) (float64, error) {
	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case line, ok := <-l.lines:
			if !ok {
				if errors.Is(l.readErr, io.EOF) {
					return 0, fmt.Errorf("%w: %w", ErrLinkDown, io.ErrUnexpectedEOF)
				}
				return 0, fmt.Errorf("%w: serial read: %w", ErrLinkDown, l.readErr)
			}
			angle, err := ParseAngleLine(line)
			if errors.Is(err, ErrNotAngle) {
				l.logger.Debug("board", "line", line)
				continue
			}
			return angle, err
		}
	}
}

// Command writes one command line to the board.
func (l *SerialLink) Command(target, gain float64) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	if _, err := io.WriteString(l.port, FormatCommand(target, gain)+"\n"); err != nil {
		return fmt.Errorf("%w: serial write: %w", ErrLinkDown, err)
	}
	return nil
}

// Close closes the port, which also ends the read loop.
func (l *SerialLink) Close() error {
	var err error
	l.closeOnce.Do(func() {
		err = l.port.Close()
	})
	return err
}
