package arena

import (
	"github.com/cockroachdb/errors"
)

// Settings shape one match. Distances are in arena units, durations in frames.
type Settings struct {
	Width         float64 `mapstructure:"width" yaml:"width"`
	Height        float64 `mapstructure:"height" yaml:"height"`
	TeamSize      int     `mapstructure:"team_size" yaml:"team_size"`
	Frames        int     `mapstructure:"frames" yaml:"frames"`
	Seed          uint64  `mapstructure:"seed" yaml:"seed"`
	VisionRadius  float64 `mapstructure:"vision_radius" yaml:"vision_radius"`
	ThrowRange    float64 `mapstructure:"throw_range" yaml:"throw_range"`
	Speed         float64 `mapstructure:"speed" yaml:"speed"`
	BallSpeed     float64 `mapstructure:"ball_speed" yaml:"ball_speed"`
	RespawnFrames int     `mapstructure:"respawn_frames" yaml:"respawn_frames"`
	DodgeFrames   int     `mapstructure:"dodge_frames" yaml:"dodge_frames"`
	PowerUps      int     `mapstructure:"power_ups" yaml:"power_ups"`
}

// DefaultSettings is a small 3v3 match of one minute at 30 frames a second.
func DefaultSettings() Settings {
	return Settings{
		Width:         40,
		Height:        24,
		TeamSize:      3,
		Frames:        1800,
		Seed:          1,
		VisionRadius:  10,
		ThrowRange:    7,
		Speed:         0.25,
		BallSpeed:     0.8,
		RespawnFrames: 90,
		DodgeFrames:   8,
		PowerUps:      2,
	}
}

var ErrInvalidSettings = errors.New("arena: invalid settings")

func (s Settings) Validate() error {
	switch {
	case s.Width <= 0 || s.Height <= 0:
		return errors.Wrapf(ErrInvalidSettings, "size %gx%g", s.Width, s.Height)
	case s.TeamSize <= 0:
		return errors.Wrapf(ErrInvalidSettings, "team size %d", s.TeamSize)
	case s.Frames <= 0:
		return errors.Wrapf(ErrInvalidSettings, "frames %d", s.Frames)
	case s.VisionRadius <= 0 || s.ThrowRange <= 0:
		return errors.Wrapf(ErrInvalidSettings, "vision %g, throw range %g", s.VisionRadius, s.ThrowRange)
	case s.Speed <= 0 || s.BallSpeed <= 0:
		return errors.Wrapf(ErrInvalidSettings, "speed %g, ball speed %g", s.Speed, s.BallSpeed)
	case s.RespawnFrames < 0 || s.DodgeFrames < 0 || s.PowerUps < 0:
		return errors.Wrap(ErrInvalidSettings, "negative respawn, dodge or power-up count")
	}
	return nil
}
