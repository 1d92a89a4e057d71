// SPDX-License-Identifier: Unlicense OR MIT

// Package config holds the backend configuration.
//
// Applications ship the configuration as a TOML asset:
//
//	log_level = "debug"
//	visibility_priority = "default-idle"
//	barrier_watchdog = "2s"
//	thread_name = "GDK Thread Environment"
//	scroll_scale = 1.0
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/GNOME/gtk-sub015/internal/mainloop"
)

// Config is the backend configuration.
type Config struct {
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log_level"`
	// VisibilityPriority is the main loop priority of the task completing
	// a visibility change.
	VisibilityPriority Priority `toml:"visibility_priority"`
	// BarrierWatchdog reports visibility rendezvous stalled for longer
	// than its value. Zero disables it.
	BarrierWatchdog Duration `toml:"barrier_watchdog"`
	// ThreadName names native threads attached to the VM.
	ThreadName string `toml:"thread_name"`
	// ScrollScale multiplies scroll axis values.
	ScrollScale float64 `toml:"scroll_scale"`
}

// Priority is a main loop priority by name.
type Priority struct {
	mainloop.Priority
}

// Duration is a time.Duration in its string form.
type Duration struct {
	time.Duration
}

var priorities = []struct {
	name string
	prio mainloop.Priority
}{
	{"high", mainloop.PriorityHigh},
	{"default", mainloop.PriorityDefault},
	{"high-idle", mainloop.PriorityHighIdle},
	{"redraw", mainloop.PriorityRedraw},
	{"default-idle", mainloop.PriorityDefaultIdle},
	{"low", mainloop.PriorityLow},
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		LogLevel:           "info",
		VisibilityPriority: Priority{mainloop.PriorityDefaultIdle},
		ThreadName:         "GDK Thread Environment",
		ScrollScale:        1,
	}
}

// Load decodes a TOML configuration over the defaults. Unknown keys are
// an error.
func Load(r io.Reader) (Config, error) {
	c := Default()
	md, err := toml.NewDecoder(r).Decode(&c)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		return Config{}, fmt.Errorf("config: unknown keys: %s", strings.Join(names, ", "))
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the value ranges.
func (c Config) Validate() error {
	if c.BarrierWatchdog.Duration < 0 {
		return fmt.Errorf("config: negative barrier_watchdog %v", c.BarrierWatchdog)
	}
	if c.ScrollScale <= 0 {
		return fmt.Errorf("config: scroll_scale must be positive, got %v", c.ScrollScale)
	}
	if c.ThreadName == "" {
		return fmt.Errorf("config: empty thread_name")
	}
	return nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func (p Priority) MarshalText() ([]byte, error) {
	for _, e := range priorities {
		if e.prio == p.Priority {
			return []byte(e.name), nil
		}
	}
	return nil, fmt.Errorf("config: unnamed priority %d", p.Priority)
}

func (p *Priority) UnmarshalText(text []byte) error {
	for _, e := range priorities {
		if e.name == string(text) {
			p.Priority = e.prio
			return nil
		}
	}
	return fmt.Errorf("config: unknown priority %q", text)
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}
