package ports

import "github.com/dominicporter/software-for-climate-iot/internal/domain"

// Spool buffers samples whose upload failed, so a network outage does not
// lose readings.
type Spool interface {
	Append(s *domain.Sample) error
	// Drain replays up to max spooled samples through fn in FIFO order,
	// removing the ones fn accepts. It stops at the first fn error and keeps
	// the remainder. Returns the number of samples replayed through fn;
	// entries dropped as unreadable are not counted.
	Drain(max int, fn func(*domain.Sample) error) (int, error)
	Len() int
	SizeBytes() int64
}
