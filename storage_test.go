package renderer

import "testing"

func TestRenderStorageCheckRenewData(t *testing.T) {
	s := NewRenderStorage()

	if !s.CheckRenewData(64, 64, 2) {
		t.Fatal("first CheckRenewData should allocate")
	}
	if s.CheckRenewData(64, 64, 2) {
		t.Fatal("unchanged dimensions should not reallocate")
	}
	if s.NumSources() != 2 {
		t.Fatalf("NumSources() = %d, want 2", s.NumSources())
	}

	for i := 0; i < 2; i++ {
		if s.Image(i) == nil {
			t.Errorf("Image(%d) is nil after allocation", i)
		}
		if s.Mask(i) == nil {
			t.Errorf("Mask(%d) is nil after allocation", i)
		}
	}

	if !s.CheckRenewData(128, 64, 2) {
		t.Fatal("growing maxW should trigger reallocation")
	}
}

func TestRenderStorageOutOfRange(t *testing.T) {
	s := NewRenderStorage()
	s.CheckRenewData(16, 16, 1)

	if s.Image(-1) != nil || s.Image(5) != nil {
		t.Fatal("Image() should return nil for out-of-range indices")
	}
	if s.Mask(-1) != nil || s.Mask(5) != nil {
		t.Fatal("Mask() should return nil for out-of-range indices")
	}
}

func TestRenderStorageRelease(t *testing.T) {
	s := NewRenderStorage()
	s.CheckRenewData(16, 16, 1)
	s.Release()

	if s.NumSources() != 0 {
		t.Fatalf("NumSources() = %d, want 0 after Release", s.NumSources())
	}
	if s.Image(0) != nil {
		t.Fatal("Image(0) should be nil after Release")
	}
}
