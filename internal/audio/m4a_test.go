package audio

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type captureRunner struct {
	name string
	args []string
	err  error
}

func (r *captureRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.name = name
	r.args = args
	return nil, []byte("stderr text"), r.err
}

func TestM4AEmbedderBinary(t *testing.T) {
	if got := (M4AEmbedder{}).binary(); got != "AtomicParsley" {
		t.Errorf("default binary = %q", got)
	}
	if got := (M4AEmbedder{Binary: "/opt/ap"}).binary(); got != "/opt/ap" {
		t.Errorf("explicit binary = %q", got)
	}
	t.Setenv("ATOMICPARSLEY", "/usr/local/bin/ap")
	if got := (M4AEmbedder{}).binary(); got != "/usr/local/bin/ap" {
		t.Errorf("env binary = %q", got)
	}
}

func TestM4AEmbedCover(t *testing.T) {
	r := &captureRunner{}
	e := M4AEmbedder{Runner: r}

	if err := e.EmbedCover(context.Background(), "/music/song.m4a", pngBytes(t, 10, 10), 300, 85); err != nil {
		t.Fatal(err)
	}
	if r.name != "AtomicParsley" {
		t.Errorf("binary = %q", r.name)
	}
	if len(r.args) != 6 || r.args[0] != "/music/song.m4a" {
		t.Fatalf("args = %v", r.args)
	}
	if r.args[1] != "--artwork" || r.args[2] != "REMOVE_ALL" {
		t.Errorf("args = %v", r.args)
	}
	if r.args[3] != "--artwork" || !strings.HasSuffix(r.args[4], ".jpg") {
		t.Errorf("args = %v", r.args)
	}
	if r.args[5] != "--overWrite" {
		t.Errorf("args = %v", r.args)
	}
}

func TestM4AEmbedCoverToolFailure(t *testing.T) {
	r := &captureRunner{err: errors.New("exit status 1")}
	e := M4AEmbedder{Runner: r}

	err := e.EmbedCover(context.Background(), "/music/song.m4a", pngBytes(t, 10, 10), 300, 85)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "stderr text") {
		t.Errorf("error lacks stderr: %v", err)
	}
}
