// Package monitor talks to firmware that reports bus sessions over the
// framed serial protocol: it queries the last session status and reads the
// bus event ring.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"twibang/core"
	"twibang/host/serial"
	"twibang/protocol"
)

// ErrNotConnected is returned by operations on a closed monitor
var ErrNotConnected = errors.New("monitor: not connected")

// DefaultTimeout bounds every wait for a report
const DefaultTimeout = time.Second

// Monitor is a host-side connection to the firmware
type Monitor struct {
	transport *protocol.HostTransport
	log       *zap.SugaredLogger
	timeout   time.Duration
}

// Open opens the serial port described by cfg and returns a connected monitor
func Open(cfg *serial.Config, log *zap.SugaredLogger) (*Monitor, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}
	if err := port.Flush(); err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to flush serial port: %w", err), port.Close())
	}
	return New(port, log), nil
}

// New wraps an already open stream
func New(port io.ReadWriteCloser, log *zap.SugaredLogger) *Monitor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Monitor{
		transport: protocol.NewHostTransport(port),
		log:       log,
		timeout:   DefaultTimeout,
	}
}

// SetTimeout changes how long to wait for each report
func (m *Monitor) SetTimeout(d time.Duration) {
	m.timeout = d
}

// Close stops the transport and closes the port
func (m *Monitor) Close() error {
	if m.transport == nil {
		return nil
	}
	err := m.transport.Close()
	m.transport = nil
	return err
}

// QueryStatus asks for the status of the last finished session
func (m *Monitor) QueryStatus() (core.Status, error) {
	if m.transport == nil {
		return core.Status{}, ErrNotConnected
	}
	if err := m.transport.SendCommand(core.CmdQueryStatus, nil); err != nil {
		return core.Status{}, fmt.Errorf("query_status: %w", err)
	}
	for {
		id, data, err := m.next(m.timeout)
		if err != nil {
			return core.Status{}, fmt.Errorf("query_status: %w", err)
		}
		if id != core.MsgStatus {
			m.log.Debugw("skipping report", "id", id)
			continue
		}
		return core.DecodeStatus(&data)
	}
}

// DumpEvents reads the firmware's bus event ring, oldest first
func (m *Monitor) DumpEvents() ([]core.BusEvent, error) {
	if m.transport == nil {
		return nil, ErrNotConnected
	}
	if err := m.transport.SendCommand(core.CmdDumpEvents, nil); err != nil {
		return nil, fmt.Errorf("dump_events: %w", err)
	}

	var events []core.BusEvent
	for {
		id, data, err := m.next(m.timeout)
		if err != nil {
			return events, fmt.Errorf("dump_events: %w", err)
		}
		switch id {
		case core.MsgBusEvent:
			evt, err := core.DecodeBusEvent(&data)
			if err != nil {
				return events, fmt.Errorf("bus_event: %w", err)
			}
			events = append(events, evt)
		case core.MsgEventsDone:
			count, err := protocol.DecodeVLQUint(&data)
			if err != nil {
				return events, fmt.Errorf("events_done: %w", err)
			}
			if int(count) != len(events) {
				return events, fmt.Errorf("events_done: firmware sent %d events, received %d", count, len(events))
			}
			return events, nil
		case core.MsgStatus:
			st, _ := core.DecodeStatus(&data)
			m.log.Infow("session finished during dump", "status", st.String())
		default:
			m.log.Debugw("skipping report", "id", id)
		}
	}
}

// ClearEvents empties the firmware's bus event ring
func (m *Monitor) ClearEvents() error {
	if m.transport == nil {
		return ErrNotConnected
	}
	if err := m.transport.SendCommand(core.CmdClearEvents, nil); err != nil {
		return fmt.Errorf("clear_events: %w", err)
	}
	return nil
}

// Watch calls fn for every session status the firmware publishes until ctx
// is done
func (m *Monitor) Watch(ctx context.Context, fn func(core.Status)) error {
	if m.transport == nil {
		return ErrNotConnected
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		id, data, err := m.next(100 * time.Millisecond)
		if err != nil {
			if errors.Is(err, protocol.ErrTransportStopped) {
				return err
			}
			continue // Poll timeout; check ctx again
		}
		if id != core.MsgStatus {
			continue
		}
		st, err := core.DecodeStatus(&data)
		if err != nil {
			m.log.Warnw("malformed session_status", "error", err)
			continue
		}
		fn(st)
	}
}

// next waits for one report and splits off its message ID
func (m *Monitor) next(timeout time.Duration) (uint16, []byte, error) {
	msg, err := m.transport.ReceiveResponse(timeout)
	if err != nil {
		return 0, nil, err
	}
	data := msg.Payload
	id, err := protocol.DecodeVLQUint(&data)
	if err != nil {
		return 0, nil, fmt.Errorf("malformed report: %w", err)
	}
	return uint16(id), data, nil
}
