package display

import "testing"

func TestConsoleClearAndLines(t *testing.T) {
	c := NewConsole()

	c.AddLine("bat: 87")
	c.AddLine("co2 ppm: 641.0")

	lines := c.Lines()
	if len(lines) != 2 || lines[0] != "bat: 87" {
		t.Fatalf("unexpected lines %v", lines)
	}

	c.Clear()
	if got := c.Lines(); len(got) != 0 {
		t.Fatalf("expected empty display after clear, got %v", got)
	}
}

func TestLinesReturnsCopy(t *testing.T) {
	c := NewConsole()
	c.AddLine("one")

	lines := c.Lines()
	lines[0] = "mutated"

	if got := c.Lines(); got[0] != "one" {
		t.Fatalf("expected internal state untouched, got %v", got)
	}
}
