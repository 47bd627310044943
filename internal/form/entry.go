package form

// Entry is a child row of the form: either a row typed in during this visit (New) or a
// row loaded from the data service (Existing). The set of implementations is closed.
type Entry[T comparable] interface {
	Value() T
	sealed()
}

// New is a child row without a server-assigned id.
type New[T comparable] struct {
	Fields T
}

// Value returns the row fields.
func (n New[T]) Value() T { return n.Fields }

func (New[T]) sealed() {}

// Existing is a child row that was loaded with a server-assigned id.
type Existing[T comparable] struct {
	ID     int64
	Fields T
}

// Value returns the row fields.
func (e Existing[T]) Value() T { return e.Fields }

func (Existing[T]) sealed() {}

// withFields returns the same variant carrying new field values.
func withFields[T comparable](entry Entry[T], fields T) Entry[T] {
	switch e := entry.(type) {
	case Existing[T]:
		return Existing[T]{ID: e.ID, Fields: fields}
	default:
		return New[T]{Fields: fields}
	}
}

// changedRow is an existing row whose fields differ from the baseline.
type changedRow[T comparable] struct {
	ID     int64
	Fields T
}

// partition splits the working rows into rows to add and rows to update. Existing rows
// equal to their baseline are skipped; so are ids the baseline never contained.
func partition[T comparable](entries []Entry[T], baseline map[int64]T) ([]T, []changedRow[T]) {
	added := make([]T, 0)
	changed := make([]changedRow[T], 0)
	for _, entry := range entries {
		switch e := entry.(type) {
		case New[T]:
			added = append(added, e.Fields)
		case Existing[T]:
			original, ok := baseline[e.ID]
			if ok && original != e.Fields {
				changed = append(changed, changedRow[T]{ID: e.ID, Fields: e.Fields})
			}
		}
	}
	return added, changed
}

// removeAt deletes position i and reports the server id of the removed row, if any.
func removeAt[T comparable](entries []Entry[T], i int) ([]Entry[T], int64, bool) {
	removed := entries[i]
	next := make([]Entry[T], 0, len(entries)-1)
	next = append(next, entries[:i]...)
	next = append(next, entries[i+1:]...)
	if e, ok := removed.(Existing[T]); ok {
		return next, e.ID, true
	}
	return next, 0, false
}

func appendUnique(ids []int64, id int64) []int64 {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
