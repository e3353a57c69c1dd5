package changeset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const FieldActive = "active"

// Change describes one mutable field whose stored value differs from the observed value.
type Change struct {
	Field string
	From  string
	To    string
}

func (c Change) String() string {
	return fmt.Sprintf("%s: '%s' -> '%s'", c.Field, c.From, c.To)
}

// Reactivation is the synthetic entry recorded when an inactive record is observed again.
func Reactivation() Change {
	return Change{Field: FieldActive, From: "false", To: "true"}
}

type List []Change

func (l List) Empty() bool {
	return len(l) == 0
}

func (l List) Fields() []string {
	out := make([]string, 0, len(l))
	for _, c := range l {
		out = append(out, c.Field)
	}
	return out
}

func (l List) Strings() []string {
	out := make([]string, 0, len(l))
	for _, c := range l {
		out = append(out, c.String())
	}
	return out
}

func (l List) Has(field string) bool {
	for _, c := range l {
		if c.Field == field {
			return true
		}
	}
	return false
}

func (l List) String() string {
	return strings.Join(l.Strings(), ", ")
}

// Builder accumulates field comparisons in declaration order.
type Builder struct {
	changes List
}

func (b *Builder) Changes() List {
	return b.changes
}

func (b *Builder) add(field, from, to string) {
	b.changes = append(b.changes, Change{Field: field, From: from, To: to})
}

func (b *Builder) String(field, from, to string) {
	if from != to {
		b.add(field, from, to)
	}
}

func (b *Builder) Int(field string, from, to int64) {
	if from != to {
		b.add(field, strconv.FormatInt(from, 10), strconv.FormatInt(to, 10))
	}
}

// OptionalString treats nil and the empty string as the same value.
func (b *Builder) OptionalString(field string, from, to *string) {
	left, right := Deref(from), Deref(to)
	if left != right {
		b.add(field, left, right)
	}
}

// Time compares at second granularity so formatting differences never surface as changes.
func (b *Builder) Time(field string, from, to *time.Time) {
	if SameSecond(from, to) {
		return
	}
	b.add(field, formatTime(from), formatTime(to))
}

func SameSecond(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Truncate(time.Second).Equal(b.Truncate(time.Second))
}

func Deref[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}

// NonEmpty returns nil for blank strings.
func NonEmpty(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02T15:04:05")
}
