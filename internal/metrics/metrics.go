/*
Package metrics wraps datadog-go to record transfer outcomes.
Naming convention:
- Internal process time: *.time
- Error: *.err
*/
package metrics

import (
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/citizenwallet/custody/internal/logging"
)

const (
	prefix = "custody."

	// buffer 10 counters before sending to statsd
	bufferMetrics = 10
	ddRate        = 1
)

type Ender interface {
	End()
}

type Service interface {
	BumpSum(key string, val float64, tags ...string)
	BumpHistogram(key string, val float64, tags ...string)
	BumpTime(key string, tags ...string) Ender
}

type statsCli interface {
	Count(name string, value int64, tags []string, rate float64) error
	Histogram(name string, value float64, tags []string, rate float64) error
	TimeInMilliseconds(name string, value float64, tags []string, rate float64) error
	Close() error
}

type DDMetrics struct {
	cli    statsCli
	ddTags []string
	log    logging.Logger
}

// New connects to a statsd agent at addr, e.g. "127.0.0.1:8125"
func New(addr string, log logging.Logger, tags ...string) (*DDMetrics, error) {
	cli, err := statsd.NewBuffered(addr, bufferMetrics)
	if err != nil {
		return nil, err
	}

	return &DDMetrics{cli: cli, ddTags: parseTag(tags), log: log}, nil
}

func (dm *DDMetrics) BumpSum(key string, val float64, tags ...string) {
	if err := dm.cli.Count(prefix+key, int64(val), dm.tags(tags), ddRate); err != nil {
		dm.log.WithFields(logging.Fields{"err": err, "key": key, "func": "BumpSum"}).Warn("bump fail")
	}
}

func (dm *DDMetrics) BumpHistogram(key string, val float64, tags ...string) {
	if err := dm.cli.Histogram(prefix+key, val, dm.tags(tags), ddRate); err != nil {
		dm.log.WithFields(logging.Fields{"err": err, "key": key, "func": "BumpHistogram"}).Warn("bump fail")
	}
}

// BumpTime starts a timer; call End on the result to record it.
//
//	defer m.BumpTime("transfer.time").End()
func (dm *DDMetrics) BumpTime(key string, tags ...string) Ender {
	return &ddTimeTracker{
		dm:    dm,
		start: time.Now(),
		key:   prefix + key,
		tags:  dm.tags(tags),
	}
}

func (dm *DDMetrics) Close() error {
	return dm.cli.Close()
}

func (dm *DDMetrics) tags(tags []string) []string {
	all := make([]string, 0, len(dm.ddTags)+len(tags)/2)
	all = append(all, dm.ddTags...)
	return append(all, parseTag(tags)...)
}

// parseTag turns key, value pairs into key:value tags. A trailing key without a
// value is dropped.
func parseTag(tags []string) []string {
	arr := make([]string, 0, len(tags)/2)
	for i := 0; i+1 < len(tags); i += 2 {
		arr = append(arr, tags[i]+":"+tags[i+1])
	}
	return arr
}

type ddTimeTracker struct {
	dm    *DDMetrics
	start time.Time
	key   string
	tags  []string
}

func (dt *ddTimeTracker) End() {
	dur := float64(time.Since(dt.start)) / float64(time.Millisecond)

	if err := dt.dm.cli.TimeInMilliseconds(dt.key, dur, dt.tags, ddRate); err != nil {
		dt.dm.log.WithFields(logging.Fields{"err": err, "key": dt.key, "func": "BumpTime"}).Warn("bump fail")
	}
}

// Nop discards everything.
type Nop struct{}

func (Nop) BumpSum(key string, val float64, tags ...string)       {}
func (Nop) BumpHistogram(key string, val float64, tags ...string) {}
func (Nop) BumpTime(key string, tags ...string) Ender             { return nopEnder{} }

type nopEnder struct{}

func (nopEnder) End() {}
