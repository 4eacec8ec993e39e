package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseCommand turns positional CLI arguments into a Command:
//
//	<operation> [id] [payload-file|-]
//
// The id is present only for operations addressing an existing resource, and
// the payload source only for operations that send a body. "-" reads stdin.
func ParseCommand(args []string, stdin io.Reader) (Command, error) {
	if len(args) == 0 {
		return Command{}, fmt.Errorf("missing operation")
	}

	name := strings.ToLower(strings.TrimSpace(args[0]))
	op, ok := operations[name]
	if !ok {
		return Command{}, fmt.Errorf("%w %q", ErrUnknownOperation, args[0])
	}

	want := 1
	if op.needsID {
		want++
	}
	if op.needsPayload {
		want++
	}
	if len(args) != want {
		return Command{}, fmt.Errorf("operation %s expects %d argument(s), got %d", name, want-1, len(args)-1)
	}

	cmd := Command{Operation: name}
	rest := args[1:]
	if op.needsID {
		cmd.ID = rest[0]
		rest = rest[1:]
	}
	if op.needsPayload {
		payload, err := readPayload(rest[0], stdin)
		if err != nil {
			return Command{}, err
		}
		cmd.Payload = payload
	}
	return cmd, nil
}

func readPayload(src string, stdin io.Reader) (json.RawMessage, error) {
	var (
		raw []byte
		err error
	)
	if src == "-" {
		if stdin == nil {
			return nil, fmt.Errorf("payload requested from stdin but none is available")
		}
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(src)
	}
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("payload from %s is not valid JSON", src)
	}
	return json.RawMessage(raw), nil
}
