package resume

// Entry is a list item addressed by a caller-assigned id.
type Entry interface {
	Experience | Education | Skill
	EntryID() string
}

// Append returns a new list with item at the end. list is not modified.
func Append[T Entry](list []T, item T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, list...)
	return append(out, item)
}

// Remove returns a copy of list without the entry carrying id.
// Order is preserved; an unknown id yields an unchanged copy.
func Remove[T Entry](list []T, id string) []T {
	out := make([]T, 0, len(list))
	for _, e := range list {
		if e.EntryID() != id {
			out = append(out, e)
		}
	}
	return out
}

// Update returns a copy of list where only the entry carrying id went through fn.
// found is false when no entry matched.
func Update[T Entry](list []T, id string, fn func(T) T) (out []T, found bool) {
	out = make([]T, len(list))
	for i, e := range list {
		if e.EntryID() == id {
			e = fn(e)
			found = true
		}
		out[i] = e
	}
	return out, found
}

// Find returns the entry carrying id.
func Find[T Entry](list []T, id string) (T, bool) {
	for _, e := range list {
		if e.EntryID() == id {
			return e, true
		}
	}
	var zero T
	return zero, false
}
