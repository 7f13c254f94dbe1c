package main

import (
	"fmt"
	"io"

	"github.com/alecthomas/chroma/quick"

	"github.com/unkn0wn-root/groupsort/internal/dataset"
)

const (
	diffFormatter = "terminal256"
	diffStyle     = "monokai"
)

func printDiff(w io.Writer, before, after dataset.Set, color bool) error {
	diff, err := dataset.Diff(before, after)
	if err != nil {
		return err
	}
	if diff == "" {
		_, err = fmt.Fprintln(w, "No distances changed.")
		return err
	}
	if color {
		if err := quick.Highlight(w, diff, "diff", diffFormatter, diffStyle); err == nil {
			return nil
		}
	}
	_, err = fmt.Fprint(w, diff)
	return err
}
