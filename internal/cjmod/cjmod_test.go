package cjmod

import "testing"

func TestParseVirtualObjectKeysExtractsTopLevelKeys(t *testing.T) {
	keys := ParseVirtualObjectKeys(`{ click: onClick, hover: onHover }`)
	want := []string{"click", "hover"}
	if len(keys) != len(want) {
		t.Fatalf("got %v, want %v", keys, want)
	}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("got %v, want %v", keys, want)
		}
	}
}

func TestParseVirtualObjectKeysIgnoresNestedKeys(t *testing.T) {
	keys := ParseVirtualObjectKeys(`{ click: { nested: true }, hover: onHover }`)
	want := []string{"click", "hover"}
	if len(keys) != len(want) {
		t.Fatalf("got %v, want %v", keys, want)
	}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("got %v, want %v", keys, want)
		}
	}
}

func TestParseVirtualObjectKeysIgnoresValuesWithoutColon(t *testing.T) {
	keys := ParseVirtualObjectKeys(`{ click: onClick }`)
	for _, k := range keys {
		if k == "onClick" {
			t.Fatalf("value identifier %q should not be collected as a key, got %v", k, keys)
		}
	}
}

func TestCheckVirtualObjectKeyRejectsUnregisteredKey(t *testing.T) {
	r := NewKeywordRegistry()
	r.RegisterVirtualObjectKeys("listen", "click", "hover")
	if r.CheckVirtualObjectKey("listen", "drag") {
		t.Fatal("expected drag to be rejected, it was never registered for listen")
	}
	if !r.CheckVirtualObjectKey("listen", "click") {
		t.Fatal("expected click to pass, it was registered for listen")
	}
}

func TestCheckVirtualObjectKeyAllowsUnregisteredFunction(t *testing.T) {
	r := NewKeywordRegistry()
	if !r.CheckVirtualObjectKey("neverRegistered", "anyKey") {
		t.Fatal("a function that never registered a key set should not restrict any key")
	}
}
