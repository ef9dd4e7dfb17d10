package archive

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/iancoleman/strcase"
)

// Info is the [Info] block every CMOD/CJMOD must carry (spec.md §4.I),
// validated with go-playground/validator/v10 the way a config struct
// would be validated, rather than hand-rolled field checks.
type Info struct {
	Name        string `validate:"required"`
	Version     string `validate:"required"`
	Description string `validate:"required"`
	Author      string `validate:"required"`
	License     string `validate:"required"`
	Dependencies []string `validate:"dive,required"`
}

var infoValidator = validator.New()

// ValidateInfo runs struct-tag validation over an Info block, reporting
// every failing field (spec.md §4.I "a malformed [Info] block is a hard
// error, not a warning").
func ValidateInfo(info Info) error {
	if err := infoValidator.Struct(info); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("invalid [Info] block: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// NormalizeInfoKey maps a raw [Info] block key (which source authors may
// write in snake_case, kebab-case, or Title Case) to the canonical
// UpperCamelCase key matching Info's field names (`author_name` becomes
// `AuthorName`), using strcase.ToCamel (spec.md §B "key normalization").
func NormalizeInfoKey(raw string) string {
	return strcase.ToCamel(raw)
}

// CmodEntryPath is the fixed on-disk layout a CMOD packs: source chtl
// files under src/, plus the info manifest (spec.md §4.I).
const (
	CmodInfoEntry = "info.chtl"
	CmodSrcPrefix = "src/"
)

// PackCmod builds a CMOD archive: one info.chtl manifest entry plus every
// source file under src/.
func PackCmod(info Info, infoSource string, sources map[string][]byte) ([]byte, error) {
	if err := ValidateInfo(info); err != nil {
		return nil, err
	}
	entries := []Entry{{Name: CmodInfoEntry, Data: []byte(infoSource)}}
	for name, data := range sources {
		entries = append(entries, Entry{Name: CmodSrcPrefix + name, Data: data})
	}
	SortEntries(entries[1:]) // keep info.chtl first, sort the rest
	return Pack(entries)
}

// UnpackCmod extracts the info manifest text and the src/ files from a
// packed CMOD archive, rejecting archives missing the manifest.
func UnpackCmod(data []byte) (infoSource string, sources map[string][]byte, err error) {
	entries, err := Unpack(data)
	if err != nil {
		return "", nil, err
	}
	sources = make(map[string][]byte)
	found := false
	for _, e := range entries {
		switch {
		case e.Name == CmodInfoEntry:
			infoSource = string(e.Data)
			found = true
		case strings.HasPrefix(e.Name, CmodSrcPrefix):
			sources[strings.TrimPrefix(e.Name, CmodSrcPrefix)] = e.Data
		}
	}
	if !found {
		return "", nil, fmt.Errorf("archive: missing required %s entry", CmodInfoEntry)
	}
	return infoSource, sources, nil
}

// CJmodEntryPaths mirrors CmodEntryPath for CJMOD archives, which additionally
// pack a compiled extension manifest (spec.md §6).
const (
	CJmodInfoEntry     = "info.chtl"
	CJmodSrcPrefix     = "src/"
	CJmodManifestEntry = "keywords.json"
)

// PackCJmod builds a CJMOD archive with an additional keyword-registration
// manifest alongside the CMOD layout (spec.md §6 "a CJMOD ships the
// keywords it registers so hosts can validate availability before load").
func PackCJmod(info Info, infoSource string, sources map[string][]byte, keywordManifest []byte) ([]byte, error) {
	if err := ValidateInfo(info); err != nil {
		return nil, err
	}
	entries := []Entry{
		{Name: CJmodInfoEntry, Data: []byte(infoSource)},
		{Name: CJmodManifestEntry, Data: keywordManifest},
	}
	var srcEntries []Entry
	for name, data := range sources {
		srcEntries = append(srcEntries, Entry{Name: CJmodSrcPrefix + name, Data: data})
	}
	SortEntries(srcEntries)
	entries = append(entries, srcEntries...)
	return Pack(entries)
}
