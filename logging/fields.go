package logging

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"
)

// Field applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

func SessionID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("session_id", id)
	}
}

func ConfigName(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("config", name)
	}
}

// Kind adds the puzzle kind (tiles or pitchers).
func Kind(kind string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("kind", kind)
	}
}

func Strategy(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("strategy", name)
	}
}

func Action(action string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("action", action)
	}
}

// SearchStats adds the node counters of a finished search.
func SearchStats(expanded, generated, planLength int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("expanded", expanded).Int("generated", generated).Int("plan_length", planLength)
	}
}

func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// HTTPRequest adds method, path, and status of a served request.
func HTTPRequest(method, path string, status int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("method", method).Str("path", path).Int("status", status)
	}
}

func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

func Count(key string, n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int(key, n)
	}
}

func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}

func Bool(key string, value bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool(key, value)
	}
}
