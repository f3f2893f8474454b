package storage

import "fmt"

// Mode is the two-valued storage mode switch. In ModeLocalOnly the sync
// adapter is never called; in ModeCloudSync every write also attempts the
// remote mirror and reads prefer the remote copy with local fallback.
type Mode string

const (
	ModeLocalOnly Mode = "localOnly"
	ModeCloudSync Mode = "cloudSync"
)

// ParseMode validates a mode value coming from the API or the store.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLocalOnly, ModeCloudSync:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid storage mode %q", s)
	}
}
