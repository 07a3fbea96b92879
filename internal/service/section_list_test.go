package service

import (
	"testing"

	"sophrologie-backend/internal/constants"
	"sophrologie-backend/internal/models"
)

func sampleSections() models.PageSections {
	return NormalizeSections([]models.Section{
		{ID: "sec-a", Type: constants.SectionHero, Title: "Accueil", Image: &models.SectionImage{URL: "/uploads/hero.jpg", Alt: "Cabinet"}},
		{ID: "sec-b", Type: constants.SectionText, Title: "Présentation", Content: "La sophrologie."},
		{ID: "sec-c", Type: constants.SectionCardGrid, Title: "Séances", Items: []models.SectionItem{
			{Title: "Individuelle", Content: "Une heure."},
			{Title: "Groupe", Content: "Atelier."},
		}},
	})
}

func assertDenseOrder(t *testing.T, sections models.PageSections) {
	t.Helper()
	for i, section := range sections {
		if section.Order != i {
			t.Fatalf("section %d (%s) has order %d, want %d", i, section.ID, section.Order, i)
		}
	}
}

func TestAddSectionAppendsNormalizedDefault(t *testing.T) {
	sections := sampleSections()

	result, newID := AddSection(sections, "cta")

	if len(result) != len(sections)+1 {
		t.Fatalf("expected %d sections, got %d", len(sections)+1, len(result))
	}
	if newID == "" {
		t.Fatal("expected a new section id")
	}
	added := result[len(result)-1]
	if added.ID != newID || added.Type != constants.SectionCTA {
		t.Fatalf("unexpected appended section: %+v", added)
	}
	if added.Buttons == nil {
		t.Fatal("expected cta default to carry a buttons slice")
	}
	if len(sections) != 3 {
		t.Fatalf("input was mutated, len = %d", len(sections))
	}
	assertDenseOrder(t, result)
}

func TestUpdateFieldMergesNestedPath(t *testing.T) {
	sections := sampleSections()

	result := UpdateField(sections, "sec-a", "image.alt", "Salle de consultation")

	updated := result[0]
	if updated.Image == nil || updated.Image.Alt != "Salle de consultation" {
		t.Fatalf("alt not updated: %+v", updated.Image)
	}
	if updated.Image.URL != "/uploads/hero.jpg" {
		t.Fatalf("sibling field lost: url = %q", updated.Image.URL)
	}
	if sections[0].Image.Alt != "Cabinet" {
		t.Fatalf("input was mutated: alt = %q", sections[0].Image.Alt)
	}
}

func TestUpdateFieldRejectsIdentityFields(t *testing.T) {
	sections := sampleSections()

	for _, path := range []string{"id", "type", "order", "  ", ""} {
		result := UpdateField(sections, "sec-a", path, "hijacked")
		if !result.Equal(sections) {
			t.Fatalf("path %q was applied", path)
		}
	}
}

func TestUpdateFieldStaleIDIsNoOp(t *testing.T) {
	sections := sampleSections()

	result := UpdateField(sections, "gone", "title", "x")
	if !result.Equal(sections) {
		t.Fatal("stale section id changed the list")
	}
}

func TestUpdateItemField(t *testing.T) {
	sections := sampleSections()

	result := UpdateItemField(sections, "sec-c", "items", 1, "content", "Atelier en petit groupe.")

	if result[2].Items[1].Content != "Atelier en petit groupe." {
		t.Fatalf("item not updated: %+v", result[2].Items[1])
	}
	if result[2].Items[0].Content != "Une heure." {
		t.Fatal("sibling item changed")
	}
	if sections[2].Items[1].Content != "Atelier." {
		t.Fatal("input was mutated")
	}
}

func TestUpdateItemFieldOutOfRangeIsNoOp(t *testing.T) {
	sections := sampleSections()

	if result := UpdateItemField(sections, "sec-c", "items", 5, "title", "x"); !result.Equal(sections) {
		t.Fatal("out-of-range index changed the list")
	}
	if result := UpdateItemField(sections, "sec-c", "items", -1, "title", "x"); !result.Equal(sections) {
		t.Fatal("negative index changed the list")
	}
	if result := UpdateItemField(sections, "sec-c", "badges", 0, "title", "x"); !result.Equal(sections) {
		t.Fatal("unknown array field changed the list")
	}
}

func TestAddItemDefaults(t *testing.T) {
	sections := sampleSections()

	result := AddItem(sections, "sec-c", "items", nil)
	if len(result[2].Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(result[2].Items))
	}

	withCTA, ctaID := AddSection(sections, constants.SectionCTA)
	result = AddItem(withCTA, ctaID, "buttons", nil)
	buttons := result[len(result)-1].Buttons
	if len(buttons) != 1 || buttons[0].URL != "#" {
		t.Fatalf("expected default button with url #, got %+v", buttons)
	}
}

func TestRemoveItem(t *testing.T) {
	sections := sampleSections()

	result := RemoveItem(sections, "sec-c", "items", 0)
	if len(result[2].Items) != 1 || result[2].Items[0].Title != "Groupe" {
		t.Fatalf("unexpected items after removal: %+v", result[2].Items)
	}

	if again := RemoveItem(result, "sec-c", "items", 5); !again.Equal(result) {
		t.Fatal("out-of-range removal changed the list")
	}
}

func TestDeleteSectionRenumbersAndIsIdempotent(t *testing.T) {
	sections := sampleSections()

	result := DeleteSection(sections, "sec-b")
	if len(result) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(result))
	}
	if result[0].ID != "sec-a" || result[1].ID != "sec-c" {
		t.Fatalf("unexpected survivors: %s, %s", result[0].ID, result[1].ID)
	}
	assertDenseOrder(t, result)

	if again := DeleteSection(result, "sec-b"); !again.Equal(result) {
		t.Fatal("second delete of the same id changed the list")
	}
}

func TestDuplicateSectionInsertsIndependentCopy(t *testing.T) {
	sections := sampleSections()

	result, copyID := DuplicateSection(sections, "sec-c")
	if len(result) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(result))
	}
	if copyID == "" || copyID == "sec-c" {
		t.Fatalf("bad duplicate id %q", copyID)
	}
	if result[3].ID != copyID {
		t.Fatalf("duplicate not inserted after source: %+v", result[3])
	}
	assertDenseOrder(t, result)

	// Mutating the copy must not reach the original's payload.
	mutated := UpdateItemField(result, copyID, "items", 0, "title", "Modifiée")
	if mutated[2].Items[0].Title != "Individuelle" {
		t.Fatal("duplicate aliases the original's items")
	}
}

func TestDuplicateSectionStaleIDIsNoOp(t *testing.T) {
	sections := sampleSections()

	result, copyID := DuplicateSection(sections, "gone")
	if copyID != "" || !result.Equal(sections) {
		t.Fatal("stale duplicate changed the list")
	}
}

func TestReorderMovesAndRenumbers(t *testing.T) {
	sections := sampleSections()

	// [A, B, C] with move(2, 0) becomes [C, A, B].
	result := Reorder(sections, 2, 0)
	got := []string{result[0].ID, result[1].ID, result[2].ID}
	want := []string{"sec-c", "sec-a", "sec-b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order after move = %v, want %v", got, want)
		}
	}
	assertDenseOrder(t, result)
}

func TestReorderOutOfRangeIsNoOp(t *testing.T) {
	sections := sampleSections()

	for _, move := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 3}, {1, 1}} {
		if result := Reorder(sections, move[0], move[1]); !result.Equal(sections) {
			t.Fatalf("move %v changed the list", move)
		}
	}
}

func TestSetVisibleHidesWithoutDeleting(t *testing.T) {
	sections := sampleSections()

	result := SetVisible(sections, "sec-b", false)
	if len(result) != 3 {
		t.Fatal("hiding removed a section")
	}
	if result[1].IsVisible() {
		t.Fatal("section still visible")
	}
	if !sections[1].IsVisible() {
		t.Fatal("input was mutated")
	}

	shown := SetVisible(result, "sec-b", true)
	if !shown[1].IsVisible() {
		t.Fatal("section not shown again")
	}
}
