package core

import (
	"testing"
	"time"
)

func TestIdentifiersAreReused(t *testing.T) {
	a, b := new(int), new(int)
	idA := IdentifierAquireNewID(a)
	idB := IdentifierAquireNewID(b)
	if idA == idB {
		t.Fatalf("two owners got id %d", idA)
	}
	if IdentifierOwner(idA) != a {
		t.Errorf("owner of %d is not a", idA)
	}

	if err := IdentifierReleaseID(idA); err != nil {
		t.Fatalf("IdentifierReleaseID: %v", err)
	}
	if IdentifierOwner(idA) != nil {
		t.Errorf("released id still owned")
	}
	c := new(int)
	if idC := IdentifierAquireNewID(c); idC != idA {
		t.Errorf("new id = %d, want released id %d", idC, idA)
	}

	if err := IdentifierReleaseID(1 << 30); err == nil {
		t.Errorf("out of range release succeeded")
	}
	_ = IdentifierReleaseID(idA)
	_ = IdentifierReleaseID(idB)
}

func TestMetricsFrameCounts(t *testing.T) {
	before := MetricsFrame()
	MetricsRecordApply()
	MetricsRecordRebuild(64)
	MetricsRecordBind()
	MetricsRecordBind()
	after := MetricsFrame()

	if after.Applies-before.Applies != 1 || after.Rebuilds-before.Rebuilds != 1 ||
		after.BytesTransferred-before.BytesTransferred != 64 || after.Binds-before.Binds != 2 {
		t.Errorf("metrics delta = %+v -> %+v", before, after)
	}
}

func TestClock(t *testing.T) {
	c := NewClock()
	c.Update()
	if c.Elapsed() != 0 {
		t.Errorf("unstarted clock elapsed %v", c.Elapsed())
	}
	c.Start()
	time.Sleep(time.Millisecond)
	c.Stop()
	elapsed := c.Elapsed()
	if elapsed < time.Millisecond {
		t.Errorf("Elapsed = %v, want at least 1ms", elapsed)
	}
	c.Update()
	if c.Elapsed() != elapsed {
		t.Errorf("stopped clock kept counting")
	}
}
