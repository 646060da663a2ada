package engine

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// Event types of the log.
const (
	TypeMarker   = "MARKER"
	TypeTrigger  = "TRIGGER"
	TypeResponse = "RESPONSE"
	TypeClick    = "CLICK"
	TypeRoutine  = "ROUTINE"
)

type EventLogEntry struct {
	Time  time.Duration
	Frame int
	Block int
	Type  string
	Label string
	Value string
}

// EventLog keeps one row per logged event in memory until the session ends.
type EventLog struct {
	Info    [][2]string
	Entries []EventLogEntry
}

func (l *EventLog) Log(e EventLogEntry) {
	l.Entries = append(l.Entries, e)
}

// Labels returns the labels of all entries of type typ, in order.
func (l *EventLog) Labels(typ string) []string {
	var out []string
	for _, e := range l.Entries {
		if e.Type == typ {
			out = append(out, e.Label)
		}
	}
	return out
}

// Save writes the log as a wide CSV: the session info columns repeated on
// every row, then the event columns.
func (l *EventLog) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := make([]string, 0, len(l.Info)+6)
	info := make([]string, 0, len(l.Info))
	for _, kv := range l.Info {
		header = append(header, kv[0])
		info = append(info, kv[1])
	}
	header = append(header, "thisRow.t", "frame", "block", "type", "label", "value")
	w.Write(header)

	for _, e := range l.Entries {
		row := append(append([]string(nil), info...),
			strconv.FormatFloat(e.Time.Seconds(), 'f', 6, 64),
			strconv.Itoa(e.Frame),
			strconv.Itoa(e.Block),
			e.Type,
			e.Label,
			e.Value,
		)
		w.Write(row)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
