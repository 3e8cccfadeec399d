// Package power persists wake alarms and issues device resets. Deep sleep is
// modeled as a process exit: this adapter only records the wake-at deadline
// for whatever supervises the process (systemd timer, rtcwake hook) and the
// node terminates itself afterwards.
package power

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

const wakeFileName = "wake.json"

// Controller writes the wake alarm to a state file and runs an optional
// reboot command on reset.
type Controller struct {
	stateDir      string
	rebootCommand string
}

func New(stateDir, rebootCommand string) *Controller {
	return &Controller{stateDir: stateDir, rebootCommand: rebootCommand}
}

// WakeFile is where the wake supervisor finds the next alarm.
func (c *Controller) WakeFile() string {
	return filepath.Join(c.stateDir, wakeFileName)
}

type wakeRecord struct {
	WakeAt time.Time `json:"wake_at"`
	SetAt  time.Time `json:"set_at"`
}

func (c *Controller) ArmWake(at time.Time) error {
	if err := os.MkdirAll(c.stateDir, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(wakeRecord{WakeAt: at.UTC(), SetAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	tmp := c.WakeFile() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.WakeFile())
}

// Reset requests a full device reset. With no command configured it is a
// no-op and the caller's process exit is the whole reset.
func (c *Controller) Reset() error {
	if c.rebootCommand == "" {
		return nil
	}
	argv := strings.Fields(c.rebootCommand)
	out, err := exec.Command(argv[0], argv[1:]...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("reboot command %q: %w (%s)", c.rebootCommand, err, strings.TrimSpace(string(out)))
	}
	return nil
}

var _ ports.PowerController = (*Controller)(nil)
