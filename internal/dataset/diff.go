package dataset

import (
	"fmt"

	"github.com/aymanbagabas/go-udiff"
)

// Diff renders a unified diff of the YAML encodings of before and after.
// It returns an empty string when nothing changed.
func Diff(before, after Set) (string, error) {
	a, err := Encode(before, FormatYAML)
	if err != nil {
		return "", fmt.Errorf("dataset: encode original: %w", err)
	}
	b, err := Encode(after, FormatYAML)
	if err != nil {
		return "", fmt.Errorf("dataset: encode current: %w", err)
	}
	if string(a) == string(b) {
		return "", nil
	}
	name := before.Name + ".yaml"
	return udiff.Unified("a/"+name, "b/"+name, string(a), string(b)), nil
}
