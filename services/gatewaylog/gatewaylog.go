// Package gatewaylog recovers the linked-gateway list of auxiliary reflectors
// (P25, NXDN) from their daily logs. Those reflectors periodically log a
// block such as
//
//	M: 2024-01-15 10:00:00.123 Currently linked repeaters:
//	M: 2024-01-15 10:00:00.123     W1AW      : 192.0.2.10:41000 2/60
//	M: 2024-01-15 10:00:00.123     DL1ABC    : 198.51.100.7:41000 5/60
//
// and the most recent block describes the current state.
package gatewaylog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/vainnor/reflector-dashboard/config"
	"github.com/vainnor/reflector-dashboard/metrics"
	"github.com/vainnor/reflector-dashboard/types"
)

const (
	linkedMarker = "Currently linked repeaters"
	emptyMarker  = "No repeaters/gateways linked"
)

// LineSchema describes the fixed-width layout of a block line.
type LineSchema struct {
	// ContinuationCol is where three spaces mark a line as part of a block.
	ContinuationCol int
	TimestampCol    int
	TimestampLen    int
	TimestampLayout string
	CallsignCol     int
	CallsignLen     int
	// AddressCol starts the host:port field, which runs to the next space.
	AddressCol int
}

// DefaultSchema matches the MMDVM-style reflector log format.
var DefaultSchema = LineSchema{
	ContinuationCol: 27,
	TimestampCol:    3,
	TimestampLen:    19,
	TimestampLayout: "2006-01-02 15:04:05",
	CallsignCol:     31,
	CallsignLen:     11,
	AddressCol:      43,
}

// Continues reports whether line carries the block continuation marker.
func (s LineSchema) Continues(line string) bool {
	end := s.ContinuationCol + 3
	return len(line) >= end && line[s.ContinuationCol:end] == "   "
}

// Parse extracts a gateway from a block line. It fails closed: any line
// whose columns do not hold a timestamp, a callsign and a host:port
// address yields false.
func (s LineSchema) Parse(line string) (types.Gateway, bool) {
	if !s.Continues(line) || len(line) <= s.AddressCol {
		return types.Gateway{}, false
	}
	if s.CallsignCol+s.CallsignLen > s.AddressCol {
		return types.Gateway{}, false
	}

	ts, err := time.ParseInLocation(s.TimestampLayout, line[s.TimestampCol:s.TimestampCol+s.TimestampLen], time.UTC)
	if err != nil {
		return types.Gateway{}, false
	}

	callsign := strings.TrimSpace(line[s.CallsignCol : s.CallsignCol+s.CallsignLen])
	callsign = strings.TrimSpace(strings.TrimSuffix(callsign, ":"))
	fields := strings.Fields(callsign)
	if len(fields) == 0 {
		return types.Gateway{}, false
	}

	rest := strings.Fields(line[s.AddressCol:])
	if len(rest) == 0 {
		return types.Gateway{}, false
	}
	host, port, err := net.SplitHostPort(rest[0])
	if err != nil || host == "" || port == "" {
		return types.Gateway{}, false
	}

	return types.Gateway{
		Callsign:  fields[0],
		Timestamp: ts,
		Address:   rest[0],
	}, true
}

// Scan walks lines from the end looking for the latest linked block. A
// service restart or an explicit empty-state line found first means
// nothing is linked.
func (s LineSchema) Scan(lines []string, service string) []types.Gateway {
	starting := "Starting " + service
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if strings.Contains(line, starting) || strings.Contains(line, emptyMarker) {
			return nil
		}
		if strings.Contains(line, linkedMarker) {
			return s.collect(lines[i+1:])
		}
	}
	return nil
}

// collect reads block lines until the continuation marker stops. A
// candidate is dropped when its callsign or its address was already seen.
func (s LineSchema) collect(lines []string) []types.Gateway {
	var (
		gateways  []types.Gateway
		callsigns = make(map[string]bool)
		addresses = make(map[string]bool)
	)
	for _, line := range lines {
		if !s.Continues(line) {
			break
		}
		gw, ok := s.Parse(line)
		if !ok {
			continue
		}
		if callsigns[gw.Callsign] || addresses[gw.Address] {
			continue
		}
		callsigns[gw.Callsign] = true
		addresses[gw.Address] = true
		gateways = append(gateways, gw)
	}
	return gateways
}

// Scan applies DefaultSchema.
func Scan(lines []string, service string) []types.Gateway {
	return DefaultSchema.Scan(lines, service)
}

// ReadLines splits r into lines without their line endings.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	return lines, sc.Err()
}

// LogPath expands the {date} placeholder of a source path for day (UTC).
func LogPath(src config.GatewaySource, day time.Time) string {
	return strings.ReplaceAll(src.Path, "{date}", day.UTC().Format("2006-01-02"))
}

// ScanFile scans the day's log of src. A missing log is not an error.
func ScanFile(ctx context.Context, src config.GatewaySource, day time.Time) ([]types.Gateway, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := LogPath(src, day)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		metrics.GatewaysLinked.WithLabelValues(src.Protocol).Set(0)
		return nil, nil
	}
	if err != nil {
		metrics.StatusReadErrors.WithLabelValues("log").Inc()
		return nil, fmt.Errorf("opening %s log: %w", src.Protocol, err)
	}
	defer f.Close()

	lines, err := ReadLines(f)
	if err != nil {
		metrics.StatusReadErrors.WithLabelValues("log").Inc()
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	gateways := Scan(lines, src.Service)
	for i := range gateways {
		gateways[i].Protocol = src.Protocol
	}
	metrics.GatewaysLinked.WithLabelValues(src.Protocol).Set(float64(len(gateways)))
	return gateways, nil
}
