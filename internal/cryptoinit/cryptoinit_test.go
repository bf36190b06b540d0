// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package cryptoinit

import (
	"errors"
	"sync"
	"testing"
)

type fakeProvider struct {
	probeErr     error
	probeCalls   int
	shutdownCall int
}

func (f *fakeProvider) ProbeEntropy() error {
	f.probeCalls++
	return f.probeErr
}

func (f *fakeProvider) Shutdown() {
	f.shutdownCall++
}

func TestInitializeIsIdempotent(t *testing.T) {
	p := &fakeProvider{}
	g := New(p, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Initialize()
		}()
	}
	wg.Wait()

	if p.probeCalls != 1 {
		t.Fatalf("ProbeEntropy called %d times, want 1", p.probeCalls)
	}
	if !g.Ready() {
		t.Fatal("expected Ready after Initialize")
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	p := &fakeProvider{}
	g := New(p, nil)
	g.Initialize()

	g.Shutdown()
	g.Shutdown()

	if p.shutdownCall != 1 {
		t.Fatalf("Shutdown called %d times, want 1", p.shutdownCall)
	}
	if g.Ready() {
		t.Fatal("expected not Ready after Shutdown")
	}
}

func TestShutdownBeforeInitializePanics(t *testing.T) {
	g := New(&fakeProvider{}, nil)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	g.Shutdown()
}

func TestReinitializeAfterShutdownPanics(t *testing.T) {
	g := New(&fakeProvider{}, nil)
	g.Initialize()
	g.Shutdown()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	g.Initialize()
}

func TestUnseededPRNGIsFatal(t *testing.T) {
	p := &fakeProvider{probeErr: errors.New("no entropy")}
	g := New(p, nil)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unseeded PRNG")
		}
	}()
	g.Initialize()
}
