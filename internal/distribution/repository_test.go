package distribution

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestNormalizeNumber(t *testing.T) {
	number, err := NormalizeNumber(" +33 6 12 34 56 78 ")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if number != "33612345678" {
		t.Errorf("Expected 33612345678, got %s", number)
	}

	if _, err := NormalizeNumber("06 12"); err == nil {
		t.Error("Expected error for short number")
	}
}

func TestRepositoryLifecycle(t *testing.T) {
	store := NewMemoryStore()

	list, err := store.Create("Clients Méditerranée")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if list.ID == 0 || len(list.Numbers) != 0 {
		t.Errorf("Fresh list malformed: %+v", list)
	}

	if _, err := store.Create("   "); err == nil {
		t.Error("Blank name should be rejected")
	}

	list, err = store.AddNumber(list.ID, "+33 6 11 11 11 11")
	if err != nil {
		t.Fatalf("AddNumber failed: %v", err)
	}
	if !reflect.DeepEqual(list.Numbers, []string{"33611111111"}) {
		t.Errorf("Number not normalized on add: %v", list.Numbers)
	}

	if _, err := store.AddNumber(list.ID, "33611111111"); !errors.Is(err, ErrDuplicateNumber) {
		t.Errorf("Expected ErrDuplicateNumber, got %v", err)
	}

	if _, err := store.AddNumber(list.ID, "123"); err == nil {
		t.Error("Short number should be rejected before any mutation")
	}

	list, err = store.RemoveNumber(list.ID, "33611111111")
	if err != nil {
		t.Fatalf("RemoveNumber failed: %v", err)
	}
	if len(list.Numbers) != 0 {
		t.Errorf("Number not removed: %v", list.Numbers)
	}

	if err := store.Delete(list.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(list.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on double delete, got %v", err)
	}
	if _, err := store.Get(list.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestParseNumbers(t *testing.T) {
	csv := "+33 6 11 11 11 11\ninvalid\n0612\n33622222222\n33611111111\n"
	numbers, err := ParseNumbers(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseNumbers failed: %v", err)
	}

	want := []string{"33611111111", "33622222222"}
	if !reflect.DeepEqual(numbers, want) {
		t.Errorf("Expected %v, got %v", want, numbers)
	}
}

func TestAddNumbersMergesWithoutDuplicates(t *testing.T) {
	store := NewMemoryStore()
	list, _ := store.Create("Import CSV")
	if _, err := store.AddNumber(list.ID, "33611111111"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	list, err := store.AddNumbers(list.ID, []string{"33611111111", "33622222222"})
	if err != nil {
		t.Fatalf("AddNumbers failed: %v", err)
	}

	want := []string{"33611111111", "33622222222"}
	if !reflect.DeepEqual(list.Numbers, want) {
		t.Errorf("Expected merged %v, got %v", want, list.Numbers)
	}
}
