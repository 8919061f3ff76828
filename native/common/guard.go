package common

import "errors"

// ErrModulePaused is returned when an operation is attempted while the
// operator has paused the owning module.
var ErrModulePaused = errors.New("module paused")

// PauseView reports the operational pause state per module name.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard rejects the operation when its module is paused. A nil view or empty
// module name disables the check.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}
