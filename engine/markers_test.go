package engine

import (
	"bufio"
	"bytes"
	"log"
	"net"
	"strings"
	"testing"
	"time"
)

func TestMarkerFormats(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{LocationMarker(ModeOddball, 2, CatTarget, 4), "Oddball/block_2/target/loc_4"},
		{LocationMarker(ModeFlicker, 0, CatTargetMarker, 1), "Flicker/block_0/target_marker/loc_1"},
		{TrialMarker(ModeFlickerOddball, 1, 3, 3), "FlickerOddball/block_1/target/loc_3"},
		{TrialMarker(ModeFlickerOddball, 1, 3, 0), "FlickerOddball/block_1/nontarget/loc_0"},
		{EventMarker(ModeDannyFlicker, 5, EvBlockStart), "DannyFlicker/block_5/block_start"},
		{EventMarker(ModeOddball, 0, EvFlashCountStart), "Oddball/block_0/flash_count_start"},
		{RepeatMarker(ModeDannyFlicker, 3, 1), "DannyFlicker/block_3/repeat_1"},
		{FrequencyMarker(2, 6.67), "loc_2/freq_6.67"},
		{FrequencyMarker(1, 12), "loc_1/freq_12"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestParseMarker(t *testing.T) {
	info, err := ParseMarker("DannyFlickerOddball/block_4/nontarget/loc_5")
	if err != nil {
		t.Fatal(err)
	}
	want := MarkerInfo{Mode: ModeDannyFlickerOddball, Block: 4, Category: CatNonTarget, Loc: 5}
	if info != want {
		t.Errorf("ParseMarker = %+v, want %+v", info, want)
	}

	info, err = ParseMarker(EventMarker(ModeOddball, 11, EvBlockEnd))
	if err != nil {
		t.Fatal(err)
	}
	if info.Block != 11 || info.Category != EvBlockEnd || info.Loc != -1 {
		t.Errorf("ParseMarker(block_end) = %+v", info)
	}

	for _, bad := range []string{"loc_1/freq_12", "Oddball/blk_1/target", "Oddball/block_x/target", "Oddball/block_1/target/pos_2"} {
		if _, err := ParseMarker(bad); err == nil {
			t.Errorf("ParseMarker(%q) succeeded, want error", bad)
		}
	}
}

func TestTCPOutletWritesLines(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	got := make(chan []string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			got <- nil
			return
		}
		defer conn.Close()
		var lines []string
		sc := bufio.NewScanner(conn)
		for sc.Scan() {
			lines = append(lines, sc.Text())
		}
		got <- lines
	}()

	out, err := DialMarkerOutlet(ln.Addr().String(), time.Second)
	if err != nil {
		t.Fatal(err)
	}
	tags := []string{"Oddball/block_0/block_start", "Oddball/block_0/target/loc_2", "Oddball/block_0/block_end"}
	for _, tag := range tags {
		if err := out.Push(tag); err != nil {
			t.Fatal(err)
		}
	}
	out.Close()

	select {
	case lines := <-got:
		if strings.Join(lines, ",") != strings.Join(tags, ",") {
			t.Errorf("received %v, want %v", lines, tags)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for markers")
	}
}

func TestLogOutlet(t *testing.T) {
	var buf bytes.Buffer
	out := LogOutlet{Log: log.New(&buf, "", 0)}
	out.Push("loc_0/freq_6")
	if !strings.Contains(buf.String(), "marker loc_0/freq_6") {
		t.Errorf("log = %q", buf.String())
	}
}
