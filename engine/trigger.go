package engine

import (
	"log"
	"math"
)

// Level is a trigger output level in volts.
type Level float64

// Within-trial and block levels.
const (
	LevelOff         Level = 0.0
	LevelFixationOn  Level = 0.5
	LevelArrowOnset  Level = 1.0
	LevelFixation2On Level = 1.5
	LevelFlickerOn   Level = 2.0
	LevelBlockStart  Level = 2.5
)

// Condition levels of the attention-cue paradigm.
const (
	LevelLeftAtt10Left12Right  Level = 3.0
	LevelLeftAtt12Left10Right  Level = 3.5
	LevelRightAtt10Left12Right Level = 4.0
	LevelRightAtt12Left10Right Level = 4.5
)

// MaxLevel is the full-scale output of the 8-bit DAC.
const MaxLevel Level = 5.0

// DACBits converts the level to an 8-bit DAC code.
func (l Level) DACBits() uint8 {
	v := math.Round(float64(l) / float64(MaxLevel) * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// TriggerDevice drives the voltage/event output line. Writes are
// fire-and-forget.
type TriggerDevice interface {
	Write(l Level) error
	Close() error
}

// NopTrigger stands in when no device is attached.
type NopTrigger struct{}

func (NopTrigger) Write(Level) error { return nil }
func (NopTrigger) Close() error      { return nil }

// OpenTrigger opens the DLP-IO8-G at device. Any failure is logged and a
// NopTrigger is returned so the frame loop never depends on the hardware.
func OpenTrigger(device string, logger *log.Logger) TriggerDevice {
	if device == "" {
		logger.Printf("no trigger device configured, using no-op trigger")
		return NopTrigger{}
	}
	dlp, err := NewDLPIO8G(device, 9600)
	if err != nil {
		logger.Printf("trigger device %s unavailable (%v), using no-op trigger", device, err)
		return NopTrigger{}
	}
	logger.Printf("trigger device %s connected", device)
	return dlp
}
