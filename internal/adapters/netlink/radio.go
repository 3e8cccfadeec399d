package netlink

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

// NopRadio assumes the host already has a network (wired dev box, managed
// wifi); every join succeeds without touching anything.
type NopRadio struct{}

func (NopRadio) Join(ctx context.Context, ssid, passphrase string) error { return nil }

// CommandRadio joins through an external tool. The command template expands
// {ssid} and {passphrase}, e.g.
// "nmcli dev wifi connect {ssid} password {passphrase}".
type CommandRadio struct {
	Command string
}

func (r CommandRadio) Join(ctx context.Context, ssid, passphrase string) error {
	if r.Command == "" {
		return fmt.Errorf("join command is empty")
	}
	expanded := strings.NewReplacer("{ssid}", ssid, "{passphrase}", passphrase).Replace(r.Command)
	argv := strings.Fields(expanded)
	out, err := exec.CommandContext(ctx, argv[0], argv[1:]...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w (%s)", argv[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

var (
	_ ports.Radio = NopRadio{}
	_ ports.Radio = CommandRadio{}
)
