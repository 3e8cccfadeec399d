// Package display renders the summary lines the on-device TFT would show.
package display

import (
	"log"
	"sync"
)

// Console mirrors the device screen into the log, one line per status entry.
type Console struct {
	mu    sync.Mutex
	lines []string
}

func NewConsole() *Console { return &Console{} }

func (c *Console) Clear() {
	c.mu.Lock()
	c.lines = c.lines[:0]
	c.mu.Unlock()
}

func (c *Console) AddLine(text string) {
	c.mu.Lock()
	c.lines = append(c.lines, text)
	c.mu.Unlock()
	log.Printf("display: %s", text)
}

// Lines returns a copy of what is currently shown.
func (c *Console) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

// Nop discards everything, for headless deployments.
type Nop struct{}

func (Nop) Clear() {}

func (Nop) AddLine(string) {}
