package logging

import (
	"time"
)

func String(key, value string) Field { return Field{Key: key, Value: value} }

func Int(key string, value int) Field { return Field{Key: key, Value: value} }

func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }

func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field { return Field{Key: key, Value: value} }

// Domain helpers

func Component(name string) Field { return String("component", name) }

func Session(id string) Field { return String("session", id) }

func NodeID(id int) Field { return Int("node_id", id) }

func EdgeID(id int) Field { return Int("edge_id", id) }

func Label(label string) Field { return String("label", label) }

func File(name string) Field { return String("file", name) }

func Operation(op string) Field { return String("operation", op) }

func State(s string) Field { return String("state", s) }

func Scale(s float64) Field { return Float64("scale", s) }

func Latency(d time.Duration) Field { return Duration("latency", d) }

func Count(n int) Field { return Int("count", n) }
