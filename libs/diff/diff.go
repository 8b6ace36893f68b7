// Package diff wraps r3labs/diff with a comparer that treats uuid.UUID as
// a scalar instead of descending into its byte array. Used to detect which
// shares flipped between two snapshots of an expense.
package diff

import (
	"reflect"

	"github.com/google/uuid"
	odiff "github.com/r3labs/diff/v3"

	dbt "settlex/db/db"
	"settlex/split"
)

func GetCustomDiffer() *odiff.Differ {
	ret, err := odiff.NewDiffer(odiff.CustomValueDiffers(&UUIDComparer{}))
	if err != nil {
		panic(err)
	}
	return ret
}

type UUIDComparer struct{}

var (
	uuidType = reflect.TypeOf(uuid.UUID{})
)

// Match reports whether this comparer handles the field.
func (c UUIDComparer) Match(a, b reflect.Value) bool {
	aok := a.Kind() == uuidType.Kind() && a.Type() == uuidType
	bok := b.Kind() == uuidType.Kind() && b.Type() == uuidType
	return (aok && bok) || (a.Kind() == reflect.Invalid && bok) || (b.Kind() == reflect.Invalid && aok)
}

// Diff compares two UUID values as whole identifiers.
func (c UUIDComparer) Diff(_ odiff.DiffType, _ odiff.DiffFunc, cl *odiff.Changelog, path []string, a reflect.Value, b reflect.Value, _ interface{}) error {
	valA := reflect.Indirect(a)
	valB := reflect.Indirect(b)

	if !valA.IsValid() || !valB.IsValid() {
		if valA.IsValid() != valB.IsValid() {
			cl.Add(odiff.UPDATE, path, a.Interface(), b.Interface())
		}
		return nil
	}

	u1 := valA.Interface().(uuid.UUID)
	u2 := valB.Interface().(uuid.UUID)

	// One UPDATE entry per changed ID, not a deep diff of the raw bytes.
	if u1 != u2 {
		cl.Add(odiff.UPDATE, path, u1, u2)
	}
	return nil
}

// InsertParentDiffer is unused: uuid fields are leaves.
func (c UUIDComparer) InsertParentDiffer(_ func(path []string, a reflect.Value, b reflect.Value, p interface{}) error) {
}

// NewlyPaidShares returns the shares that are paid in after but were not in
// before, matched by member ID. Drives the payment event fan-out after a
// store write: only actual transitions produce messages.
func NewlyPaidShares(before, after *dbt.Expense) []split.Share {
	differ := GetCustomDiffer()
	changelog, err := differ.Diff(before.Shares, after.Shares)
	if err != nil || len(changelog) == 0 {
		return nil
	}

	prev := make(map[uuid.UUID]bool, len(before.Shares))
	for _, s := range before.Shares {
		prev[s.MemberID] = s.Paid
	}

	var paid []split.Share
	for _, s := range after.Shares {
		if s.Paid && !prev[s.MemberID] {
			paid = append(paid, s)
		}
	}
	return paid
}
