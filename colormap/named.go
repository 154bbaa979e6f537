package colormap

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	namedMu sync.RWMutex
	named   = map[string][]Color{
		"gray":    {{0, 0, 0, 1}, {1, 1, 1, 1}},
		"red":     {{0, 0, 0, 1}, {1, 0, 0, 1}},
		"green":   {{0, 0, 0, 1}, {0, 1, 0, 1}},
		"blue":    {{0, 0, 0, 1}, {0, 0, 1, 1}},
		"cyan":    {{0, 0, 0, 1}, {0, 1, 1, 1}},
		"magenta": {{0, 0, 0, 1}, {1, 0, 1, 1}},
		"yellow":  {{0, 0, 0, 1}, {1, 1, 0, 1}},
		"viridis": {
			{0.267, 0.005, 0.329, 1},
			{0.231, 0.322, 0.545, 1},
			{0.129, 0.569, 0.549, 1},
			{0.369, 0.788, 0.384, 1},
			{0.992, 0.906, 0.145, 1},
		},
	}
	aliases = map[string]string{
		"grey":  "gray",
		"grays": "gray",
	}
)

// Register adds or replaces a named colormap.
func Register(name string, colors []Color) error {
	if _, err := New(name, colors, nil); err != nil {
		return err
	}
	namedMu.Lock()
	named[strings.ToLower(name)] = colors
	namedMu.Unlock()
	return nil
}

// Get returns a new instance of the named colormap.
func Get(name string) (*Colormap, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, found := aliases[key]; found {
		key = alias
	}
	namedMu.RLock()
	colors, found := named[key]
	namedMu.RUnlock()
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return New(key, append([]Color(nil), colors...), nil)
}

// Names returns the sorted names of all registered colormaps.
func Names() []string {
	namedMu.RLock()
	defer namedMu.RUnlock()
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
