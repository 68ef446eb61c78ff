package kvstore

import "testing"

func TestPutGetDelete(t *testing.T) {
	s := New(nil)

	if _, ok := s.Get("k"); ok {
		t.Fatal("Get on empty store should miss")
	}

	s.Put("k", "v")
	v, ok := s.Get("k")
	if !ok || v != "v" {
		t.Fatalf("Get(k) = (%q, %v), want (v, true)", v, ok)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}

	if !s.Delete("k") {
		t.Fatal("Delete(k) = false, want true")
	}
	if s.Delete("k") {
		t.Fatal("second Delete(k) = true, want false")
	}
	if s.Len() != 0 {
		t.Fatalf("Len() after delete = %d, want 0", s.Len())
	}
}

func TestPutOverwrites(t *testing.T) {
	s := New(nil)
	s.Put("k", "v1")
	s.Put("k", "v2")
	v, ok := s.Get("k")
	if !ok || v != "v2" {
		t.Fatalf("Get(k) = (%q, %v), want (v2, true)", v, ok)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after overwrite", s.Len())
	}
}
