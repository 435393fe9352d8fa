package directory

import (
	"testing"

	"github.com/BTreeMap/LeavePipe/internal/models"
)

func testPeople() []models.Person {
	return []models.Person{
		{ID: 1, Name: "Rahul Verma", Phone: "+919876543210", Department: "Engineering"},
		{ID: 2, Name: "Priya Sharma", Phone: "+919876543211", Department: "Engineering"},
		{ID: 3, Name: "Amit Kumar", Phone: "+919876543212", Department: "Sales"},
	}
}

func TestCanonicalPhone(t *testing.T) {
	cases := map[string]string{
		"+91 98765 43210":          "919876543210",
		"whatsapp:+1 (555) 123-45": "155512345",
		"9876543210":               "9876543210",
		"abc":                      "",
	}
	for input, expected := range cases {
		if got := CanonicalPhone(input); got != expected {
			t.Errorf("CanonicalPhone(%q) = %q, want %q", input, got, expected)
		}
	}
}

func TestSamePhone(t *testing.T) {
	cases := []struct {
		a, b     string
		expected bool
	}{
		// Country-code prefix tolerance via trailing-digit comparison.
		{"+919876543210", "9876543210", true},
		{"whatsapp:+91 98765 43210", "+919876543210", true},
		{"+919876543210", "+919876543211", false},
		{"", "+919876543210", false},
		{"", "", false},
	}
	for _, c := range cases {
		if got := SamePhone(c.a, c.b); got != c.expected {
			t.Errorf("SamePhone(%q, %q) = %v, want %v", c.a, c.b, got, c.expected)
		}
	}
}

func TestManagerCheck(t *testing.T) {
	check := NewManagerCheck("+919876500000")

	if !check.IsManager("919876500000") {
		t.Error("expected manager match without country-code plus")
	}
	if !check.IsManager("whatsapp:+91 98765 00000") {
		t.Error("expected manager match with transport prefix")
	}
	if check.IsManager("+919876543210") {
		t.Error("expected non-manager mismatch")
	}

	empty := NewManagerCheck("")
	if empty.IsManager("+919876500000") {
		t.Error("expected no manager when none is configured")
	}
}

func TestInMemoryDirectoryFindByPhone(t *testing.T) {
	dir := NewInMemoryDirectory(testPeople())

	person, err := dir.FindByPhone("whatsapp:+91 98765 43211")
	if err != nil {
		t.Fatalf("FindByPhone failed: %v", err)
	}
	if person == nil || person.Name != "Priya Sharma" {
		t.Fatalf("expected Priya Sharma, got %+v", person)
	}

	missing, err := dir.FindByPhone("+10000000000")
	if err != nil {
		t.Fatalf("FindByPhone failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown phone, got %+v", missing)
	}
}

func TestInMemoryDirectoryFindByName(t *testing.T) {
	dir := NewInMemoryDirectory(testPeople())

	person, err := dir.FindByName("priya sharma")
	if err != nil {
		t.Fatalf("FindByName failed: %v", err)
	}
	if person == nil || person.Phone != "+919876543211" {
		t.Fatalf("expected Priya's record, got %+v", person)
	}

	missing, err := dir.FindByName("Nobody")
	if err != nil {
		t.Fatalf("FindByName failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown name, got %+v", missing)
	}
}

func TestInMemoryDirectoryListOthers(t *testing.T) {
	dir := NewInMemoryDirectory(testPeople())

	others, err := dir.ListOthers("Rahul Verma", 5)
	if err != nil {
		t.Fatalf("ListOthers failed: %v", err)
	}
	if len(others) != 2 {
		t.Fatalf("expected 2 others, got %d", len(others))
	}
	for _, p := range others {
		if p.Name == "Rahul Verma" {
			t.Error("excluded person appeared in suggestions")
		}
	}

	limited, err := dir.ListOthers("Rahul Verma", 1)
	if err != nil {
		t.Fatalf("ListOthers failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected limit to cap suggestions at 1, got %d", len(limited))
	}
}
