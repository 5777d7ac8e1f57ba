package attention

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidSettings = errors.New("invalid attention settings")

// Settings control the pacing of one attention session.
type Settings struct {
	Trials        int
	SpawnDelayMin time.Duration
	SpawnDelayMax time.Duration
	ExpireAfter   time.Duration
	MarginPercent int
}

func DefaultSettings() Settings {
	return Settings{
		Trials:        10,
		SpawnDelayMin: time.Second,
		SpawnDelayMax: 3 * time.Second,
		ExpireAfter:   1500 * time.Millisecond,
		MarginPercent: 10,
	}
}

func (s Settings) Validate() error {
	switch {
	case s.Trials <= 0:
		return fmt.Errorf("%w: trials must be positive, got %d", ErrInvalidSettings, s.Trials)
	case s.SpawnDelayMin < 0 || s.SpawnDelayMax < s.SpawnDelayMin:
		return fmt.Errorf("%w: spawn delay range [%s, %s]", ErrInvalidSettings, s.SpawnDelayMin, s.SpawnDelayMax)
	case s.ExpireAfter <= 0:
		return fmt.Errorf("%w: expire delay must be positive, got %s", ErrInvalidSettings, s.ExpireAfter)
	case s.MarginPercent < 0 || s.MarginPercent >= 50:
		return fmt.Errorf("%w: margin must be in [0, 50), got %d", ErrInvalidSettings, s.MarginPercent)
	}
	return nil
}
