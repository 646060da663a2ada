package engine

import (
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"
)

// Marker categories and block events.
const (
	CatTarget       = "target"
	CatNonTarget    = "nontarget"
	CatTargetMarker = "target_marker"

	EvBlockStart      = "block_start"
	EvBlockEnd        = "block_end"
	EvFlashCountStart = "flash_count_start"
)

// MarkerOutlet publishes event tags to the recording pipeline. Push is
// fire-and-forget: no retry, no acknowledgement, no batching.
type MarkerOutlet interface {
	Push(tag string) error
	Close() error
}

func blockPrefix(mode Mode, block int) string {
	return string(mode) + "/block_" + strconv.Itoa(block) + "/"
}

// LocationMarker formats "{mode}/block_{i}/{category}/loc_{j}".
func LocationMarker(mode Mode, block int, category string, loc int) string {
	return blockPrefix(mode, block) + category + "/loc_" + strconv.Itoa(loc)
}

// EventMarker formats "{mode}/block_{i}/{event}".
func EventMarker(mode Mode, block int, event string) string {
	return blockPrefix(mode, block) + event
}

func RepeatMarker(mode Mode, block, repeat int) string {
	return EventMarker(mode, block, "repeat_"+strconv.Itoa(repeat))
}

// FrequencyMarker announces the flicker frequency of a location once per run.
func FrequencyMarker(loc int, freq float64) string {
	return "loc_" + strconv.Itoa(loc) + "/freq_" + strconv.FormatFloat(freq, 'f', -1, 64)
}

// TrialMarker picks target or nontarget for a presentation at loc.
func TrialMarker(mode Mode, block, target, loc int) string {
	if loc == target {
		return LocationMarker(mode, block, CatTarget, loc)
	}
	return LocationMarker(mode, block, CatNonTarget, loc)
}

// MarkerInfo is a parsed block-level marker.
type MarkerInfo struct {
	Mode     Mode
	Block    int
	Category string
	Loc      int // -1 when the marker carries no location
}

// ParseMarker reverses LocationMarker and EventMarker.
func ParseMarker(tag string) (MarkerInfo, error) {
	parts := strings.Split(tag, "/")
	if len(parts) < 3 || len(parts) > 4 {
		return MarkerInfo{}, fmt.Errorf("malformed marker %q", tag)
	}
	bs, ok := strings.CutPrefix(parts[1], "block_")
	if !ok {
		return MarkerInfo{}, fmt.Errorf("marker %q: missing block field", tag)
	}
	block, err := strconv.Atoi(bs)
	if err != nil {
		return MarkerInfo{}, fmt.Errorf("marker %q: bad block: %w", tag, err)
	}
	info := MarkerInfo{Mode: Mode(parts[0]), Block: block, Category: parts[2], Loc: -1}
	if len(parts) == 4 {
		ls, ok := strings.CutPrefix(parts[3], "loc_")
		if !ok {
			return MarkerInfo{}, fmt.Errorf("marker %q: missing loc field", tag)
		}
		if info.Loc, err = strconv.Atoi(ls); err != nil {
			return MarkerInfo{}, fmt.Errorf("marker %q: bad loc: %w", tag, err)
		}
	}
	return info, nil
}

// TCPOutlet writes one newline-terminated tag per Push to a stream socket,
// typically a bridge into the lab's marker stream.
type TCPOutlet struct {
	conn net.Conn
}

func DialMarkerOutlet(addr string, timeout time.Duration) (*TCPOutlet, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("dial marker outlet %s: %w", addr, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}
	return &TCPOutlet{conn: conn}, nil
}

func (o *TCPOutlet) Push(tag string) error {
	_, err := o.conn.Write([]byte(tag + "\n"))
	return err
}

func (o *TCPOutlet) Close() error {
	return o.conn.Close()
}

// LogOutlet only records markers in the session log. Used when no marker
// stream is configured.
type LogOutlet struct {
	Log *log.Logger
}

func (o LogOutlet) Push(tag string) error {
	o.Log.Printf("marker %s", tag)
	return nil
}

func (o LogOutlet) Close() error { return nil }
