package storage

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/jilio/yewdux"
)

type settings struct {
	Theme  string `json:"theme" yaml:"theme" toml:"theme"`
	Volume int    `json:"volume" yaml:"volume" toml:"volume"`
	Muted  bool   `json:"muted" yaml:"muted" toml:"muted"`
}

type counter struct {
	Count int `json:"count" yaml:"count" toml:"count"`
}

// failingBackend fails every operation
type failingBackend struct {
	err error
}

func (f failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, f.err
}

func (f failingBackend) Set(context.Context, string, []byte) error {
	return f.err
}

func (f failingBackend) Delete(context.Context, string) error {
	return f.err
}

func newTestLogger() (yewdux.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}
