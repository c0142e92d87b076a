package services

import (
	"time"

	"hotel-reservation/utils"
)

// Clock yields the current instant and the hotel's current calendar day.
type Clock interface {
	Now() time.Time
	Today() time.Time
}

type SystemClock struct {
	Location *time.Location
}

func NewSystemClock(loc *time.Location) SystemClock {
	if loc == nil {
		loc = time.UTC
	}
	return SystemClock{Location: loc}
}

func (c SystemClock) Now() time.Time { return time.Now().In(c.Location) }

func (c SystemClock) Today() time.Time { return utils.DateOf(time.Now(), c.Location) }

// ClockFunc adapts a function to Clock; tests use it to pin "today".
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

func (f ClockFunc) Today() time.Time { return utils.DateOf(f(), time.UTC) }
