package proto

import (
	"bytes"
)

// validMethods contains the set of HTTP methods that are considered valid
var validMethods = map[string]bool{
	"DELETE":      true,
	"GET":         true,
	"HEAD":        true,
	"POST":        true,
	"PUT":         true,
	"CONNECT":     true,
	"OPTIONS":     true,
	"TRACE":       true,
	"COPY":        true,
	"LOCK":        true,
	"MKCOL":       true,
	"MOVE":        true,
	"PROPFIND":    true,
	"PROPPATCH":   true,
	"SEARCH":      true,
	"UNLOCK":      true,
	"BIND":        true,
	"REBIND":      true,
	"UNBIND":      true,
	"ACL":         true,
	"REPORT":      true,
	"MKACTIVITY":  true,
	"CHECKOUT":    true,
	"MERGE":       true,
	"M-SEARCH":    true,
	"NOTIFY":      true,
	"SUBSCRIBE":   true,
	"UNSUBSCRIBE": true,
	"PATCH":       true,
	"PURGE":       true,
	"MKCALENDAR":  true,
	"LINK":        true,
	"UNLINK":      true,
}

// RequestLine is the first line of an HTTP/1.x request.
type RequestLine struct {
	Method string
	Target string
}

// ParseRequestLine recognises "METHOD target[ HTTP/x.y]" at the start of
// payload. A segment may be cut before the version, so it is optional.
func ParseRequestLine(payload []byte) (RequestLine, bool) {
	line := payload
	if i := bytes.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}

	fields := bytes.Fields(line)
	if len(fields) < 2 || len(fields) > 3 {
		return RequestLine{}, false
	}

	method := string(fields[0])
	if !validMethods[method] {
		return RequestLine{}, false
	}

	if len(fields) == 3 && !bytes.HasPrefix(fields[2], []byte("HTTP/")) {
		return RequestLine{}, false
	}

	return RequestLine{Method: method, Target: string(fields[1])}, true
}

func (r RequestLine) String() string {
	return r.Method + " " + r.Target
}
