// MIT License
//
// Copyright (c) 2016-2017 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package aeron

import (
	"fmt"
	"math/bits"
	"os"
	"time"

	"github.com/c2h5oh/datasize"
	"gopkg.in/yaml.v3"
)

// Config is the connection's construction-time configuration (§6
// Configuration), loaded from YAML the way nishisan-dev-n-backup's
// internal/config package loads ServerConfig: typed sub-structs, with
// human-readable byte-size strings parsed via datasize.
type Config struct {
	// TermLength is termCapacity: must be a power of two (ex: "64KB", "16MB").
	TermLength string `yaml:"term_length"`

	// SubscriberWindow is the configured subscription window, used as
	// termWindowSize (§4.3). Resolve rejects a value above TermLength/2 with
	// ErrWindowTooLarge.
	SubscriberWindow string `yaml:"subscriber_window"`

	// InitialWindow, clamped to the term window, is the window advertised in
	// every status message.
	InitialWindow string `yaml:"initial_window"`

	// StatusMessageTimeout, e.g. "1s", "500ms" (§4.4 trigger 4).
	StatusMessageTimeout time.Duration `yaml:"status_message_timeout"`

	// InitialTermID seeds the term ring's mapping to ring index (§3).
	InitialTermID int32 `yaml:"initial_term_id"`
}

// Resolved holds the byte-size fields parsed out of Config, validated.
type Resolved struct {
	TermCapacity         int32
	SubscriberWindow     int64
	InitialWindow        int64
	StatusMessageTimeout time.Duration
	InitialTermID        int32
}

// LoadConfig reads and parses a YAML config file at path.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("aeron: reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("aeron: parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve parses the human-readable size fields and validates the
// invariants configuration-derived quantities depend on (§4.3, §6).
func (c Config) Resolve() (Resolved, error) {
	var r Resolved

	termLength, err := parseByteSize(c.TermLength)
	if err != nil {
		return r, fmt.Errorf("aeron: term_length: %w", err)
	}
	if termLength <= 0 || termLength > 1<<31-1 || bits.OnesCount64(uint64(termLength)) != 1 {
		return r, ErrInvalidTermLength
	}
	r.TermCapacity = int32(termLength)

	subWindow, err := parseByteSize(c.SubscriberWindow)
	if err != nil {
		return r, fmt.Errorf("aeron: subscriber_window: %w", err)
	}
	if subWindow > termLength/2 {
		return r, ErrWindowTooLarge
	}
	r.SubscriberWindow = subWindow

	initWindow, err := parseByteSize(c.InitialWindow)
	if err != nil {
		return r, fmt.Errorf("aeron: initial_window: %w", err)
	}
	r.InitialWindow = initWindow

	r.StatusMessageTimeout = c.StatusMessageTimeout
	r.InitialTermID = c.InitialTermID
	return r, nil
}

func parseByteSize(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	var v datasize.ByteSize
	if err := v.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}
	return int64(v.Bytes()), nil
}
