package archive

import (
	"bytes"
	"testing"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	entries := []Entry{
		{Name: "info.chtl", Data: []byte("[Info] { name: Box; version: 1.0.0; }")},
		{Name: "src/Box.chtl", Data: []byte("[Template] @Element Box { div {} }")},
	}
	data, err := Pack(entries)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	got, err := Unpack(data)
	if err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for i, e := range entries {
		if got[i].Name != e.Name || !bytes.Equal(got[i].Data, e.Data) {
			t.Fatalf("entry %d mismatch: got %+v, want %+v", i, got[i], e)
		}
	}
}

func TestUnpackRejectsCorruptedCRC(t *testing.T) {
	data, err := Pack([]Entry{{Name: "a.txt", Data: []byte("hello")}})
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	corrupted := append([]byte(nil), data...)
	idx := bytes.Index(corrupted, []byte("hello"))
	if idx < 0 {
		t.Fatalf("could not locate payload to corrupt")
	}
	corrupted[idx] = 'H'
	if _, err := Unpack(corrupted); err == nil {
		t.Fatalf("expected a CRC mismatch error after corrupting entry data")
	}
}

func TestPackCmodRoundTrip(t *testing.T) {
	info := Info{Name: "Box", Version: "1.0.0", Description: "A box", Author: "chtl", License: "MIT"}
	data, err := PackCmod(info, "[Info]{}", map[string][]byte{"Box.chtl": []byte("div{}")})
	if err != nil {
		t.Fatalf("PackCmod failed: %v", err)
	}
	infoSrc, sources, err := UnpackCmod(data)
	if err != nil {
		t.Fatalf("UnpackCmod failed: %v", err)
	}
	if infoSrc != "[Info]{}" {
		t.Fatalf("got info source %q", infoSrc)
	}
	if string(sources["Box.chtl"]) != "div{}" {
		t.Fatalf("got source %q", sources["Box.chtl"])
	}
}

func TestValidateInfoRejectsMissingFields(t *testing.T) {
	if err := ValidateInfo(Info{}); err == nil {
		t.Fatalf("expected an error for an Info block missing required fields")
	}
}

func TestNormalizeInfoKey(t *testing.T) {
	if got := NormalizeInfoKey("module_version"); got != "ModuleVersion" {
		t.Fatalf("got %q, want ModuleVersion", got)
	}
}
