package exam

import (
	"testing"

	"github.com/google/uuid"
	"github.com/prepwise/prepwise-backend/internal/model"
)

func subjectsNamed(names ...string) []model.Subject {
	out := make([]model.Subject, len(names))
	for i, n := range names {
		out[i] = model.Subject{ID: uuid.New(), Name: n}
	}
	return out
}

func TestOrderAndLabelPinsEnglishFirst(t *testing.T) {
	subjects := subjectsNamed("Mathematics", "English Language", "Biology")

	got := OrderAndLabel(subjects, PinnedByName("english"), PinnedLabel("english"))

	want := []string{"English Language", "Biology", "Mathematics"}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("position %d = %q, want %q", i, got[i].Name, name)
		}
	}
	if got[0].Label != "English" || !got[0].Pinned {
		t.Fatalf("pinned subject label = %q pinned=%v, want short alias English", got[0].Label, got[0].Pinned)
	}
	if got[1].Label != "Biology" || got[1].Pinned {
		t.Fatalf("unpinned subject must keep its own name, got %q", got[1].Label)
	}
}

func TestOrderAndLabelCaseInsensitiveMarker(t *testing.T) {
	subjects := subjectsNamed("Use of ENGLISH", "Chemistry")

	got := OrderAndLabel(subjects, PinnedByName("english"), PinnedLabel("english"))
	if got[0].Name != "Use of ENGLISH" {
		t.Fatalf("marker match must ignore case, got %q first", got[0].Name)
	}
}

func TestOrderAndLabelStableForEqualKeys(t *testing.T) {
	subjects := subjectsNamed("Physics", "Physics", "Art")
	first, second := subjects[0].ID, subjects[1].ID

	got := OrderAndLabel(subjects, PinnedByName("english"), "English")
	if got[1].ID != first || got[2].ID != second {
		t.Fatal("equal sort keys must keep original relative order")
	}
}

func TestOrderAndLabelNoPinnedMatch(t *testing.T) {
	subjects := subjectsNamed("Physics", "Art")

	got := OrderAndLabel(subjects, PinnedByName("english"), "English")
	if got[0].Name != "Art" || got[1].Name != "Physics" {
		t.Fatalf("plain alphabetical order expected, got %q, %q", got[0].Name, got[1].Name)
	}
}
