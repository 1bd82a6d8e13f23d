package minter

import "fmt"

// Phase is the minting lifecycle stage. Phases are ordered: a transition
// only ever moves forward.
type Phase uint8

const (
	PhaseDisabled Phase = iota
	PhasePrivateWhitelist
	PhaseNormalWhitelist
	PhasePublic
	PhaseReveal
)

var phaseNames = [...]string{
	PhaseDisabled:         "disabled",
	PhasePrivateWhitelist: "private_whitelist",
	PhaseNormalWhitelist:  "normal_whitelist",
	PhasePublic:           "public",
	PhaseReveal:           "reveal",
}

// Valid reports whether p is one of the five phases.
func (p Phase) Valid() bool { return int(p) < len(phaseNames) }

func (p Phase) String() string {
	if !p.Valid() {
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
	return phaseNames[p]
}

// ParsePhase parses the snake_case phase name.
func ParsePhase(s string) (Phase, error) {
	for i, name := range phaseNames {
		if name == s {
			return Phase(i), nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("unknown phase %d", uint8(p))
	}
	return []byte(phaseNames[p]), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	v, err := ParsePhase(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
