package api

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

var errBadArguments = errors.New("bad arguments")

// pluginArgs is the JSON object posted with a plugin method call
type pluginArgs map[string]any

func decodeArgs(r io.Reader) (pluginArgs, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var args pluginArgs
	if err := dec.Decode(&args); err != nil {
		if errors.Is(err, io.EOF) {
			return pluginArgs{}, nil
		}
		return nil, fmt.Errorf("%w: %v", errBadArguments, err)
	}
	if args == nil {
		args = pluginArgs{}
	}
	return args, nil
}

func badArg(key, want string) error {
	return fmt.Errorf("%w: %q must be %s", errBadArguments, key, want)
}

func (a pluginArgs) present(key string) (any, bool) {
	v, ok := a[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (a pluginArgs) string(key string) (string, error) {
	v, ok := a.present(key)
	if !ok {
		return "", fmt.Errorf("%w: %q is required", errBadArguments, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", badArg(key, "a string")
	}
	return s, nil
}

func (a pluginArgs) optString(key, def string) (string, error) {
	if _, ok := a.present(key); !ok {
		return def, nil
	}
	return a.string(key)
}

func (a pluginArgs) int(key string) (int64, error) {
	v, ok := a.present(key)
	if !ok {
		return 0, fmt.Errorf("%w: %q is required", errBadArguments, key)
	}
	n, ok := argInt(v)
	if !ok {
		return 0, badArg(key, "an integer")
	}
	return n, nil
}

func (a pluginArgs) optInt(key string, def int64) (int64, error) {
	if _, ok := a.present(key); !ok {
		return def, nil
	}
	return a.int(key)
}

func (a pluginArgs) optBool(key string, def bool) (bool, error) {
	v, ok := a.present(key)
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, badArg(key, "a boolean")
	}
	return b, nil
}

func (a pluginArgs) intList(key string) ([]int64, error) {
	v, ok := a.present(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q is required", errBadArguments, key)
	}
	items, ok := v.([]any)
	if !ok {
		return nil, badArg(key, "a list of integers")
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		n, ok := argInt(item)
		if !ok {
			return nil, badArg(key, "a list of integers")
		}
		ids = append(ids, n)
	}
	return ids, nil
}

// argInt accepts JSON integers and decimal strings; the UI sends both
func argInt(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	}
	return 0, false
}
