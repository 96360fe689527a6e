package entity

import (
	"fmt"
	"strings"
)

type Tier int

const (
	TierEasy Tier = iota + 1
	TierModerate
	TierHard
	TierCustom
)

const (
	MaxNumberEasy     int64 = 50000
	MaxNumberModerate int64 = 100000
	MaxNumberHard     int64 = 200000

	DefaultCustomMaxNumber int64 = 250000
)

func (t Tier) String() string {
	switch t {
	case TierEasy:
		return "easy"
	case TierModerate:
		return "moderate"
	case TierHard:
		return "hard"
	case TierCustom:
		return "custom"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Difficulty selects the size of the search space. The zero value is not
// valid; use Easy, Moderate, Hard or Custom.
type Difficulty struct {
	tier   Tier
	custom int64
}

var (
	Easy     = Difficulty{tier: TierEasy}
	Moderate = Difficulty{tier: TierModerate}
	Hard     = Difficulty{tier: TierHard}
)

func Custom(maxNumber int64) Difficulty {
	return Difficulty{tier: TierCustom, custom: maxNumber}
}

func (d Difficulty) Tier() Tier { return d.tier }

func (d Difficulty) MaxNumber() int64 {
	switch d.tier {
	case TierEasy:
		return MaxNumberEasy
	case TierModerate:
		return MaxNumberModerate
	case TierHard:
		return MaxNumberHard
	case TierCustom:
		return d.custom
	default:
		return 0
	}
}

func (d Difficulty) Valid() bool {
	return d.MaxNumber() > 0
}

func (d Difficulty) String() string {
	if d.tier == TierCustom {
		return fmt.Sprintf("custom(%d)", d.custom)
	}
	return d.tier.String()
}

// ParseDifficulty maps a configuration name to a Difficulty. customMax is
// only consulted for "custom".
func ParseDifficulty(name string, customMax int64) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "easy":
		return Easy, nil
	case "moderate", "":
		return Moderate, nil
	case "hard":
		return Hard, nil
	case "custom":
		if customMax <= 0 {
			return Difficulty{}, fmt.Errorf("custom difficulty needs a positive maxnumber, got %d", customMax)
		}
		return Custom(customMax), nil
	default:
		return Difficulty{}, fmt.Errorf("unknown difficulty %q", name)
	}
}
