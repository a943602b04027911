package input

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gdamore/tcell/v2"
)

// Rune aliases for keys that can't be bare single-char TOML keys
var runeAliases = map[string]rune{
	"space": ' ',
	"plus":  '+',
	"minus": '-',
}

// keymapFile is the TOML layout: [keys] for named keys, [runes] for characters
type keymapFile struct {
	Keys  map[string]string `toml:"keys"`
	Runes map[string]string `toml:"runes"`
}

// LoadKeyConfig parses TOML keymap data into a sparse override KeyTable
// Only keys present in the TOML are populated
// Returns error on unknown action names, invalid key names, or parse failure
func LoadKeyConfig(data []byte) (*KeyTable, error) {
	var raw keymapFile
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("keymap parse: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("keymap: unknown section %q", undecoded[0].String())
	}

	kt := &KeyTable{
		Keys:  make(map[tcell.Key]Binding, len(raw.Keys)),
		Runes: make(map[rune]Binding, len(raw.Runes)),
	}

	for keyStr, action := range raw.Keys {
		k, ok := KeyByName(keyStr)
		if !ok {
			return nil, fmt.Errorf("[keys] unknown key name: %q", keyStr)
		}
		b, err := resolveAction(action)
		if err != nil {
			return nil, fmt.Errorf("[keys] key %q: %w", keyStr, err)
		}
		kt.Keys[k] = b
	}

	for keyStr, action := range raw.Runes {
		r, err := resolveRune(keyStr)
		if err != nil {
			return nil, fmt.Errorf("[runes] key %q: %w", keyStr, err)
		}
		b, err := resolveAction(action)
		if err != nil {
			return nil, fmt.Errorf("[runes] key %q: %w", keyStr, err)
		}
		kt.Runes[r] = b
	}

	return kt, nil
}

// LoadKeyFile reads a keymap file and merges it over the defaults
// An empty path returns the defaults
func LoadKeyFile(path string) (*KeyTable, error) {
	if path == "" {
		return DefaultKeyTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keymap: %w", err)
	}
	override, err := LoadKeyConfig(data)
	if err != nil {
		return nil, err
	}
	return MergeKeyTable(DefaultKeyTable(), override), nil
}

// resolveRune converts a TOML key string to a rune
// Accepts single characters and named aliases
func resolveRune(s string) (rune, error) {
	if r, ok := runeAliases[strings.ToLower(s)]; ok {
		return r, nil
	}

	runes := []rune(s)
	if len(runes) == 1 {
		return runes[0], nil
	}

	return 0, fmt.Errorf("invalid rune key: %q (expected single character or alias)", s)
}

// resolveAction converts an action name string to a Binding
func resolveAction(name string) (Binding, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	b, ok := ActionBinding(name)
	if !ok {
		return Binding{}, fmt.Errorf("unknown action: %q", name)
	}
	return b, nil
}

// MergeKeyTable returns a new KeyTable with base values overridden by override
// Override entries bound to "none" delete the key from the result
func MergeKeyTable(base, override *KeyTable) *KeyTable {
	result := base.Clone()
	mergeMap(result.Keys, override.Keys)
	mergeMap(result.Runes, override.Runes)
	return result
}

func mergeMap[K comparable](base, override map[K]Binding) {
	for k, v := range override {
		if v.Type == IntentNone {
			delete(base, k)
		} else {
			base[k] = v
		}
	}
}
