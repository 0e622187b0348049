package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider is the configuration surface the services consume.
// Keys are dot-separated hierarchical paths ("alerts.cpu_threshold");
// getters fall back to the supplied default when a key is absent.
type Provider interface {
	GetFloat(key string, def float64) float64
	GetInt(key string, def int) int
	GetBool(key string, def bool) bool
	GetString(key string, def string) string
	Set(key string, value interface{}) error
}

// Store is a YAML-file-backed Provider. Values are kept flattened by
// dot key in memory; Set persists the nested document back to disk.
type Store struct {
	mu     sync.RWMutex
	path   string
	values map[string]interface{}
}

// New returns an empty in-memory store (no backing file)
func New() *Store {
	return &Store{values: make(map[string]interface{})}
}

// Load reads a YAML config file. A missing file is not an error; it
// yields an empty store that will be created on the first Set.
func Load(path string) (*Store, error) {
	s := &Store{path: path, values: make(map[string]interface{})}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var nested map[string]interface{}
	if err := yaml.Unmarshal(data, &nested); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	flatten("", nested, s.values)
	return s, nil
}

func (s *Store) get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// GetFloat returns the float value for key, or def when absent or not numeric
func (s *Store) GetFloat(key string, def float64) float64 {
	v, ok := s.get(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return def
}

// GetInt returns the integer value for key, or def when absent or not numeric
func (s *Store) GetInt(key string, def int) int {
	v, ok := s.get(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return def
}

// GetBool returns the boolean value for key, or def when absent
func (s *Store) GetBool(key string, def bool) bool {
	v, ok := s.get(key)
	if !ok {
		return def
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

// GetString returns the string value for key, or def when absent
func (s *Store) GetString(key string, def string) string {
	v, ok := s.get(key)
	if !ok {
		return def
	}
	if str, ok := v.(string); ok {
		return str
	}
	return def
}

// GetDuration reads an integer number of seconds under key
func (s *Store) GetDuration(key string, def time.Duration) time.Duration {
	seconds := s.GetInt(key, int(def/time.Second))
	return time.Duration(seconds) * time.Second
}

// Set updates a key and persists the whole document when the store is
// file-backed
func (s *Store) Set(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	if s.path == "" {
		return nil
	}
	return s.persist()
}

// persist rewrites the backing file; caller holds the lock
func (s *Store) persist() error {
	nested := unflatten(s.values)
	data, err := yaml.Marshal(nested)
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// flatten walks a nested YAML document and records every leaf under its
// dot-joined path
func flatten(prefix string, nested map[string]interface{}, out map[string]interface{}) {
	for k, v := range nested {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := v.(map[string]interface{}); ok {
			flatten(key, child, out)
			continue
		}
		out[key] = v
	}
}

// unflatten rebuilds the nested document from dot keys
func unflatten(flat map[string]interface{}) map[string]interface{} {
	nested := make(map[string]interface{})
	for key, v := range flat {
		parts := strings.Split(key, ".")
		node := nested
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]interface{})
			if !ok {
				child = make(map[string]interface{})
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = v
	}
	return nested
}
