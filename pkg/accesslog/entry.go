package accesslog

import (
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Entry is one served request.
type Entry struct {
	ClientIP  string
	Method    string
	Path      string
	Proto     string
	UserAgent string
	Status    int
	Size      int
	Latency   time.Duration
}

func NewEntry(r *http.Request) *Entry {
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		host = h
	}
	return &Entry{
		ClientIP:  host,
		Method:    r.Method,
		Path:      r.URL.Path,
		Proto:     r.Proto,
		UserAgent: r.UserAgent(),
	}
}

func (e *Entry) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("client_ip", e.ClientIP).
		Str("method", e.Method).
		Str("path", e.Path).
		Str("proto", e.Proto).
		Str("user_agent", e.UserAgent).
		Int("status", e.Status).
		Int("size", e.Size).
		Int64("latency", e.Latency.Milliseconds())
}
