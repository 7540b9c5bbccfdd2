package types

import "testing"

func TestMetadataValueDefaultsToEmptyObject(t *testing.T) {
	var m Metadata
	v, err := m.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != "{}" {
		t.Fatalf("expected empty object, got %v", v)
	}
}

func TestMetadataScan(t *testing.T) {
	var m Metadata
	if err := m.Scan([]byte(`{"broker":"ib","lots":3}`)); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if m["broker"] != "ib" {
		t.Fatalf("unexpected broker %v", m["broker"])
	}
	if m["lots"].(float64) != 3 {
		t.Fatalf("unexpected lots %v", m["lots"])
	}

	if err := m.Scan(nil); err != nil || len(m) != 0 {
		t.Fatalf("nil scan should reset metadata, got %v err=%v", m, err)
	}
	if err := m.Scan(42); err == nil {
		t.Fatal("expected unsupported type error")
	}
	if err := m.Scan("{not json"); err == nil {
		t.Fatal("expected malformed json error")
	}
}

func TestMetadataCloneIsIndependent(t *testing.T) {
	orig := Metadata{"a": 1}
	cp := orig.Clone()
	cp["b"] = 2
	if _, ok := orig["b"]; ok {
		t.Fatal("clone should not alias the original map")
	}
}
