package logging

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// Common field constructors for steam-mcp logging.

// ToolName adds a tool name field.
func ToolName(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("tool", name)
	}
}

// InvocationID adds an invocation correlation ID field.
func InvocationID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("invocation_id", id)
	}
}

// SteamInterface adds the upstream API interface field.
func SteamInterface(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("interface", name)
	}
}

// SteamMethod adds the upstream API method field.
func SteamMethod(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("method", name)
	}
}

// Status adds an HTTP status code field.
func Status(code int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("status", code)
	}
}

// Attempt adds a retry attempt field.
func Attempt(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("attempt", n)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// RetryIn adds the delay before the next attempt.
func RetryIn(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("retry_in_ms", d.Milliseconds())
	}
}

// Cached adds a cached field.
func Cached(cached bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("cached", cached)
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Component adds a component field for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// Operation adds an operation field.
func Operation(op string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("operation", op)
	}
}

// Str adds a string field with custom key.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}

// Int adds an int field with custom key.
func Int(key string, value int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int(key, value)
	}
}

// Int64 adds an int64 field with custom key.
func Int64(key string, value int64) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64(key, value)
	}
}

// Float64 adds a float64 field with custom key.
func Float64(key string, value float64) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Float64(key, value)
	}
}

// Bool adds a bool field with custom key.
func Bool(key string, value bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool(key, value)
	}
}

// Any adds a field of arbitrary type with custom key.
func Any(key string, value any) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Any(key, value)
	}
}
