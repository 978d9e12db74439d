package mesh

import (
	"encoding/json"
	"fmt"
	"os"
)

// TagResolver maps an object tag to the texture path it was originally
// drawn with. *texture.Index satisfies it by matching file stems.
type TagResolver interface {
	ResolvePath(tag string) (string, bool)
}

// TagMap is an explicit tag → texture path table.
type TagMap map[string]string

// ResolvePath implements TagResolver.
func (m TagMap) ResolvePath(tag string) (string, bool) {
	p, ok := m[tag]
	return p, ok
}

// LoadTagMap reads a JSON object of tag → path pairs.
func LoadTagMap(path string) (TagMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mesh: read %s: %w", path, err)
	}

	var m TagMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("mesh: parse %s: %w", path, err)
	}
	return m, nil
}

// Chain tries each resolver in order and returns the first match.
type Chain []TagResolver

// ResolvePath implements TagResolver.
func (c Chain) ResolvePath(tag string) (string, bool) {
	for _, r := range c {
		if p, ok := r.ResolvePath(tag); ok {
			return p, true
		}
	}
	return "", false
}
