package collector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/vainnor/reflector-dashboard/config"
	"github.com/vainnor/reflector-dashboard/logging"
	"github.com/vainnor/reflector-dashboard/metrics"
	"github.com/vainnor/reflector-dashboard/types"
)

// ErrDataUnavailable is returned when the XML status file is missing or
// cannot be parsed.
var ErrDataUnavailable = errors.New("reflector status unavailable")

// Collector reads the reflector's status files on every call. Nothing is
// cached between requests.
type Collector struct {
	xmlFile  string
	pidFile  string
	flagFile string
	location *time.Location
	now      func() time.Time
}

func NewCollector(cfg config.ReflectorConfig) *Collector {
	return &Collector{
		xmlFile:  cfg.XMLFile,
		pidFile:  cfg.PIDFile,
		flagFile: cfg.FlagFile,
		location: cfg.Location(),
		now:      time.Now,
	}
}

// WithClock replaces the clock used for uptime calculation.
func (c *Collector) WithClock(now func() time.Time) *Collector {
	c.now = now
	return c
}

// GetCurrentData returns a fresh snapshot. The snapshot is never nil: when
// the XML file cannot be read the error wraps ErrDataUnavailable and the
// snapshot carries only process status and flags.
func (c *Collector) GetCurrentData(ctx context.Context) (*types.ReflectorData, error) {
	if err := ctx.Err(); err != nil {
		return &types.ReflectorData{}, err
	}

	data, xmlErr := c.readStatus()
	if data == nil {
		data = &types.ReflectorData{}
	}

	c.readProcess(data)
	data.Flags = c.readFlags(ctx)

	if xmlErr != nil {
		metrics.StatusReadErrors.WithLabelValues("xml").Inc()
		return data, xmlErr
	}
	return data, nil
}

func (c *Collector) readStatus() (*types.ReflectorData, error) {
	f, err := os.Open(c.xmlFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}

	data, err := ParseStatus(f, c.location)
	if err != nil {
		return &types.ReflectorData{FileTime: info.ModTime().UTC()},
			fmt.Errorf("%w: %s: %v", ErrDataUnavailable, c.xmlFile, err)
	}
	data.FileTime = info.ModTime().UTC()
	return data, nil
}

// readProcess derives running state and uptime from the PID file.
func (c *Collector) readProcess(data *types.ReflectorData) {
	if c.pidFile == "" {
		return
	}
	info, err := os.Stat(c.pidFile)
	if err != nil {
		return
	}
	data.Running = true
	if up := c.now().Sub(info.ModTime()); up > 0 {
		data.Uptime = up.Truncate(time.Second)
	}
}

func (c *Collector) readFlags(ctx context.Context) *types.FlagTable {
	if c.flagFile == "" {
		return types.NewFlagTable(nil)
	}
	flags, err := LoadFlags(c.flagFile)
	if err != nil {
		metrics.StatusReadErrors.WithLabelValues("flags").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("file", c.flagFile).Msg("country table unavailable")
		return types.NewFlagTable(nil)
	}
	return flags
}
