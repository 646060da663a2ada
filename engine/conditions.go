package engine

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Condition is one attention-cue trial type: which side to attend and the
// flicker frequency of each box.
type Condition struct {
	Attention string
	LeftHz    float64
	RightHz   float64
	Level     Level
}

// AttendedLoc is 0 for the left box and 1 for the right box.
func (c Condition) AttendedLoc() int {
	if c.Attention == "right" {
		return 1
	}
	return 0
}

var DefaultConditions = []Condition{
	{Attention: "left", LeftHz: 12, RightHz: 10, Level: LevelLeftAtt12Left10Right},
	{Attention: "right", LeftHz: 12, RightHz: 10, Level: LevelRightAtt12Left10Right},
	{Attention: "left", LeftHz: 10, RightHz: 12, Level: LevelLeftAtt10Left12Right},
	{Attention: "right", LeftHz: 10, RightHz: 12, Level: LevelRightAtt10Left12Right},
}

// LoadConditions reads attention,left_hz,right_hz,volts rows. A header row
// starting with "attention" is skipped.
func LoadConditions(path string) ([]Condition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var conds []Condition
	for i, record := range records {
		if len(record) < 4 {
			return nil, fmt.Errorf("line %d: expected 4 fields, got %d", i+1, len(record))
		}
		att := strings.ToLower(strings.TrimSpace(record[0]))
		if i == 0 && att == "attention" {
			continue
		}
		if att != "left" && att != "right" {
			return nil, fmt.Errorf("line %d: attention must be left or right, got %q", i+1, record[0])
		}

		left, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid left frequency: %v", i+1, err)
		}
		right, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid right frequency: %v", i+1, err)
		}
		volts, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid level: %v", i+1, err)
		}
		if volts < 0 || Level(volts) > MaxLevel {
			return nil, fmt.Errorf("line %d: level %v outside 0..%v V", i+1, volts, MaxLevel)
		}

		conds = append(conds, Condition{
			Attention: att,
			LeftHz:    left,
			RightHz:   right,
			Level:     Level(volts),
		})
	}
	if len(conds) == 0 {
		return nil, fmt.Errorf("%s: no conditions", path)
	}
	return conds, nil
}
