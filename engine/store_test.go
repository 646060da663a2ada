package engine

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestStoreSaveSession(t *testing.T) {
	st, err := OpenStore(filepath.Join(t.TempDir(), "run.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	rec := SessionRecord{
		ID:          uuid.New(),
		Participant: "sub-200",
		Session:     "ses-001",
		Task:        string(ModeOddball),
		Monitor:     "testMonitor",
		RefreshRate: 60,
		Seed:        7,
		StartedAt:   time.Now(),
		FinishedAt:  time.Now(),
		Aborted:     true,
	}
	events := []EventLogEntry{
		{Type: TypeTrigger, Label: "2.5"},
		{Type: TypeMarker, Label: "Oddball/block_0/block_start"},
		{Type: TypeMarker, Label: "Oddball/block_0/target/loc_1", Frame: 3},
		{Type: TypeResponse, Label: FlashCountQuestion, Value: "10"},
	}
	if err := st.SaveSession(rec, events); err != nil {
		t.Fatal(err)
	}
	tags, err := st.markers(rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 || tags[1] != "Oddball/block_0/target/loc_1" {
		t.Errorf("markers = %v", tags)
	}

	other, err := st.markers(uuid.New())
	if err != nil || len(other) != 0 {
		t.Errorf("unknown session: %v, %v", other, err)
	}
	if err := st.SaveSession(rec, nil); err == nil {
		t.Error("duplicate session id accepted")
	}
}

func TestEventLogSave(t *testing.T) {
	l := &EventLog{Info: [][2]string{{"participant", "sub-200"}, {"task", "Flicker"}}}
	l.Log(EventLogEntry{Time: 1500 * time.Millisecond, Frame: 90, Block: 2, Type: TypeMarker, Label: "Flicker/block_2/block_end"})
	l.Log(EventLogEntry{Type: TypeTrigger, Label: "0.0", Value: "0"})

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := l.Save(path); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || len(rows[0]) != 8 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[0][2] != "thisRow.t" || rows[1][0] != "sub-200" {
		t.Errorf("header/info = %v / %v", rows[0], rows[1])
	}
	if rows[1][2] != "1.500000" || rows[1][3] != "90" || rows[1][6] != "Flicker/block_2/block_end" {
		t.Errorf("row = %v", rows[1])
	}
	if got := l.Labels(TypeTrigger); len(got) != 1 || got[0] != "0.0" {
		t.Errorf("trigger labels = %v", got)
	}
}
