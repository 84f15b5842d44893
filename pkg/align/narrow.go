package align

// Narrow collapses every maximal run of consecutive identical non-blank
// labels to its first frame, rewriting the rest of the run to blank.
// Runs are detected strictly by adjacency: two separated occurrences of
// the same label are independent runs. The path is modified in place and
// keeps its length; the modified path is returned for convenience.
func Narrow(path []int, blank int) []int {
	return narrow(path, blank, blank)
}

// NarrowLiberal is the liberal variant of Narrow: run tails are
// rewritten to blank-1 instead of the true blank index.
func NarrowLiberal(path []int, blank int) []int {
	return narrow(path, blank, blank-1)
}

func narrow(path []int, blank, fill int) []int {
	prev := -1
	for i, label := range path {
		if label != blank && label == prev {
			path[i] = fill
		}
		prev = label
	}
	return path
}
