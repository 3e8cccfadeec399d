package ports

// Display renders summary readings for whoever is looking at the device.
// Implementations must not block the collection path and cannot fail it.
type Display interface {
	Clear()
	AddLine(text string)
}
