package semaphore

import "fmt"

// ErrSemaphoreFull is returned by Acquire when every slot is taken.
// The gateway maps this to a 503 before any process is spawned.
type ErrSemaphoreFull struct {
	Capacity int
	Current  int
}

func (e ErrSemaphoreFull) Error() string {
	return fmt.Sprintf("no session slot available (limit: %d, active: %d)", e.Capacity, e.Current)
}

// ErrAlreadyHolder is returned when a session tries to acquire a slot
// it already occupies.
type ErrAlreadyHolder struct {
	ID string
}

func (e ErrAlreadyHolder) Error() string {
	return fmt.Sprintf("session %s already holds a slot", e.ID)
}

// ErrNotHolder is returned when releasing a slot the session never
// acquired.
type ErrNotHolder struct {
	ID string
}

func (e ErrNotHolder) Error() string {
	return fmt.Sprintf("session %s holds no slot", e.ID)
}
