package wire

import (
	"fmt"
	"sort"
)

// FieldLayout is the ordered sequence of fields partitioning a message.
// It is shared, mutable state used by stages 1 through 6 of the pipeline
// (spec §4.1); every mutation preserves the invariant that fields never
// overlap and always account for every byte offset up to the cumulative
// max_bytes footprint.
type FieldLayout struct {
	Fields []Field
}

// NewFieldLayout builds a layout from the given fields, left to right.
func NewFieldLayout(fields ...Field) *FieldLayout {
	return &FieldLayout{Fields: append([]Field(nil), fields...)}
}

// TotalMax returns the sum of MaxBytes across all fields: the layout's
// maximum footprint.
func (l *FieldLayout) TotalMax() int {
	total := 0
	for _, f := range l.Fields {
		total += f.MaxBytes
	}
	return total
}

// TotalMin returns the sum of MinBytes across all fields.
func (l *FieldLayout) TotalMin() int {
	total := 0
	for _, f := range l.Fields {
		total += f.MinBytes
	}
	return total
}

// Clone returns a deep copy of the layout; the underlying Field slice is
// copied so mutations to the clone never alias the original.
func (l *FieldLayout) Clone() *FieldLayout {
	return &FieldLayout{Fields: append([]Field(nil), l.Fields...)}
}

// CountNamed reports how many fields currently carry the given name.
func (l *FieldLayout) CountNamed(name string) int {
	n := 0
	for _, f := range l.Fields {
		if f.Name == name {
			n++
		}
	}
	return n
}

// coveringField locates the field whose byte range [start, start+Max)
// contains pos. Returns the field index and its start offset.
func (l *FieldLayout) coveringField(pos int) (idx, start int, err error) {
	if pos < 0 {
		return 0, 0, fmt.Errorf("%w: negative offset %d", ErrLayout, pos)
	}
	cum := 0
	for i, f := range l.Fields {
		if cum+f.MaxBytes > pos {
			return i, cum, nil
		}
		cum += f.MaxBytes
	}
	return 0, 0, fmt.Errorf("%w: offset %d exceeds layout max size %d", ErrLayout, pos, cum)
}

// Insert inserts a field of the given width at byte offset pos (spec
// §4.1). shortestMsgLen is the length of the shortest message associated
// with the symbol this layout belongs to, used to decide whether the
// insertion must be marked optional. It returns the index the new field
// ends up at.
func (l *FieldLayout) Insert(pos, width int, name string, shortestMsgLen int) (int, error) {
	if width <= 0 {
		return 0, fmt.Errorf("%w: insert width must be positive, got %d", ErrLayout, width)
	}

	idx, start, err := l.coveringField(pos)
	if err != nil {
		return 0, err
	}

	covering := l.Fields[idx]
	optionalAll := covering.MinBytes == 0 || pos >= shortestMsgLen

	spanEnd := pos + width
	lastIdx := idx
	cumMaxEnd := start + l.Fields[idx].MaxBytes
	sumMinConsumed := l.Fields[idx].MinBytes
	for cumMaxEnd < spanEnd && lastIdx < len(l.Fields)-1 {
		lastIdx++
		cumMaxEnd += l.Fields[lastIdx].MaxBytes
		sumMinConsumed += l.Fields[lastIdx].MinBytes
	}

	actualSpanEnd := minInt(spanEnd, cumMaxEnd)
	actualWidth := actualSpanEnd - pos
	preWidth := pos - start
	postWidth := cumMaxEnd - actualSpanEnd

	var preMin, insMin, postMin int
	if !optionalAll {
		preMin = minInt(preWidth, sumMinConsumed)
		remaining := sumMinConsumed - preMin
		insMin = actualWidth
		postMin = clampInt(remaining-insMin, 0, postWidth)
	}

	replacement := make([]Field, 0, 3)
	insertedAt := 0
	if preWidth > 0 {
		replacement = append(replacement, Field{Name: FieldUnnamed, MinBytes: preMin, MaxBytes: preWidth})
		insertedAt = 1
	}
	replacement = append(replacement, Field{Name: name, MinBytes: insMin, MaxBytes: actualWidth})
	if postWidth > 0 {
		replacement = append(replacement, Field{Name: FieldUnnamed, MinBytes: postMin, MaxBytes: postWidth})
	}

	newFields := make([]Field, 0, len(l.Fields)-(lastIdx-idx+1)+len(replacement))
	newFields = append(newFields, l.Fields[:idx]...)
	newFields = append(newFields, replacement...)
	newFields = append(newFields, l.Fields[lastIdx+1:]...)
	l.Fields = newFields

	return idx + insertedAt, nil
}

// InsertSpec is one entry of a batch insertion passed to InsertMany.
type InsertSpec struct {
	Width int
	Name  string
}

// InsertMany performs a batch insertion (spec §4.1). Adjacent offsets
// sharing the same field name are coalesced into one wider field before
// insertion; the remaining entries are applied left to right via Insert.
func (l *FieldLayout) InsertMany(spec map[int]InsertSpec, shortestMsgLen int) error {
	if len(spec) == 0 {
		return nil
	}

	offsets := make([]int, 0, len(spec))
	for pos := range spec {
		offsets = append(offsets, pos)
	}
	sort.Ints(offsets)

	type merged struct {
		pos   int
		width int
		name  string
	}
	var entries []merged
	i := 0
	for i < len(offsets) {
		pos := offsets[i]
		s := spec[pos]
		width := s.Width
		name := s.Name
		j := i + 1
		for j < len(offsets) && offsets[j] == pos+width && spec[offsets[j]].Name == name {
			width += spec[offsets[j]].Width
			j++
		}
		entries = append(entries, merged{pos: pos, width: width, name: name})
		i = j
	}

	for _, e := range entries {
		if _, err := l.Insert(e.pos, e.width, e.name, shortestMsgLen); err != nil {
			return err
		}
	}
	return nil
}

// AdaptLast reconciles the layout's cumulative size with the observed
// [shortest, longest] message length range (spec §4.1, LayoutNormaliser).
func (l *FieldLayout) AdaptLast(shortest, longest int) error {
	if len(l.Fields) == 0 {
		return fmt.Errorf("%w: cannot adapt an empty layout", ErrLayout)
	}

	cumMin, cumMax := 0, 0
	for i := 0; i < len(l.Fields); i++ {
		cumMin += l.Fields[i].MinBytes
		if cumMin > shortest {
			excess := cumMin - shortest
			l.Fields[i].MinBytes -= excess
			cumMin = shortest
			for j := i + 1; j < len(l.Fields); j++ {
				l.Fields[j].MinBytes = 0
			}
		}

		cumMax += l.Fields[i].MaxBytes
		if cumMax > longest {
			if i != len(l.Fields)-1 {
				l.Fields = l.Fields[:i+1]
			}

			maxDiff := cumMax - longest
			newMax := l.Fields[i].MaxBytes - maxDiff

			if cumMin <= shortest {
				minDiff := shortest - cumMin
				if l.Fields[i].MinBytes+minDiff < newMax {
					l.Fields[i].MinBytes += minDiff
				} else {
					l.Fields[i].MinBytes = newMax
				}
			}

			if newMax <= 0 {
				l.Fields = l.Fields[:i]
			} else {
				l.Fields[i].MaxBytes = newMax
			}
			break
		}
	}

	return nil
}
