package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"apbio/protocol"
)

// parseLine splits a command line into a message and its wire arguments.
// Arguments are either all positional ("gpio_set_output 3 1") or all named
// ("gpio_set_output pin=3 level=1"). Values take any strconv base prefix.
func parseLine(line string) (protocol.Message, []uint32, error) {
	words, err := shlex.Split(line)
	if err != nil {
		return protocol.Message{}, nil, err
	}
	if len(words) == 0 {
		return protocol.Message{}, nil, fmt.Errorf("empty command")
	}
	msg, ok := protocol.LookupMessage(words[0])
	if !ok || msg.ID == protocol.MsgResult {
		return protocol.Message{}, nil, fmt.Errorf("unknown command %q", words[0])
	}

	params := msg.Params()
	words = words[1:]
	if len(words) != len(params) {
		return msg, nil, fmt.Errorf("%s takes %d arguments: %s", msg.Name, len(params), msg.Format)
	}

	args := make([]uint32, len(params))
	named := len(words) > 0 && strings.Contains(words[0], "=")
	seen := make([]bool, len(params))
	for i, w := range words {
		key, val, hasKey := strings.Cut(w, "=")
		if hasKey != named {
			return msg, nil, fmt.Errorf("mix of named and positional arguments")
		}
		idx := i
		if named {
			idx = indexOf(params, key)
			if idx < 0 {
				return msg, nil, fmt.Errorf("%s has no argument %q", msg.Name, key)
			}
			if seen[idx] {
				return msg, nil, fmt.Errorf("argument %q given twice", key)
			}
			seen[idx] = true
		} else {
			val = w
		}
		v, err := strconv.ParseUint(strings.ReplaceAll(val, "_", ""), 0, 32)
		if err != nil {
			return msg, nil, fmt.Errorf("argument %s: %w", params[idx], err)
		}
		args[idx] = uint32(v)
	}
	return msg, args, nil
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
