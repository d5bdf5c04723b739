// Package protocol implements the line-oriented command adapter the
// engine never has to know about: it turns "get K" / "put K V" /
// "delete K" text lines into engine calls and renders the engine's
// response back to wire text, per spec.md §4.5 and §6.
package protocol

import (
	"fmt"
	"strings"

	"github.com/emberkv/ember/pkg/value"
)

// Engine is the narrow surface the command adapter needs from the
// storage engine. internal/engine.Engine satisfies it; tests use a fake.
type Engine interface {
	Get(key string) (value.Value, bool, error)
	Put(key string, v value.Value) error
	Delete(key string) error
}

const unrecognized = "Unrecognized command. Type \"exit\" to exit"

// Dispatch parses one command line and returns the exact UTF-8 response
// text to write back to the client. It never returns an error, and it
// never panics: every outcome, including a malformed or incomplete
// command, has a defined wire response.
func Dispatch(eng Engine, line string) string {
	switch {
	case strings.HasPrefix(line, "get "), line == "get":
		return dispatchGet(eng, line)
	case strings.HasPrefix(line, "put "), line == "put":
		return dispatchPut(eng, line)
	case strings.HasPrefix(line, "delete "), line == "delete":
		return dispatchDelete(eng, line)
	default:
		return unrecognized
	}
}

func dispatchGet(eng Engine, line string) string {
	fields := strings.Split(line, " ")
	if len(fields) < 2 || fields[1] == "" {
		return unrecognized
	}
	key := fields[1]

	v, found, err := eng.Get(key)
	if err != nil || !found {
		return fmt.Sprintf("key '%s' not found", key)
	}
	return v.Text()
}

func dispatchPut(eng Engine, line string) string {
	fields := strings.Split(line, " ")
	if len(fields) < 3 || fields[1] == "" {
		return unrecognized
	}
	key, text := fields[1], fields[2]

	_ = eng.Put(key, value.Parse(text))
	return "OK"
}

// dispatchDelete always replies OK, even when the engine reports
// not_found for an absent key (spec.md §7/§9: the wire contract's
// delete response has no error case, so the not_found/OK distinction
// is lost on the wire by design, not by oversight — see DESIGN.md).
func dispatchDelete(eng Engine, line string) string {
	fields := strings.Split(line, " ")
	if len(fields) < 2 || fields[1] == "" {
		return unrecognized
	}
	key := fields[1]

	_ = eng.Delete(key)
	return "OK"
}
