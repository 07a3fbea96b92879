package service

import (
	"testing"

	"sophrologie-backend/internal/constants"
	"sophrologie-backend/internal/models"
)

func TestNormalizeSectionFillsDefaults(t *testing.T) {
	section := NormalizeSection(models.Section{Type: "  Hero "})

	if section.Type != constants.SectionHero {
		t.Fatalf("type = %q, want hero", section.Type)
	}
	if section.ID == "" {
		t.Fatal("expected generated id")
	}
	if section.Settings == nil || section.Settings.Visible == nil || !*section.Settings.Visible {
		t.Fatalf("expected explicit visible=true, got %+v", section.Settings)
	}
	if section.Settings.Alignment != constants.DefaultAlignment {
		t.Fatalf("alignment = %q", section.Settings.Alignment)
	}
	if section.Image == nil {
		t.Fatal("hero should carry an image object")
	}
}

func TestNormalizeSectionStripsAutomaticPayload(t *testing.T) {
	section := NormalizeSection(models.Section{
		ID:      "auto",
		Type:    constants.SectionContactInfo,
		Title:   "Me contacter",
		Content: "should not survive",
		Items:   []models.SectionItem{{Title: "x"}},
		Buttons: []models.SectionButton{{Text: "x"}},
	})

	if section.Content != "" || section.Items != nil || section.Buttons != nil {
		t.Fatalf("automatic section kept payload: %+v", section)
	}
	// Only the widget payload is dropped; the heading stays editable.
	if section.Title != "Me contacter" {
		t.Fatalf("title was stripped: %q", section.Title)
	}
}

func TestNormalizeSectionKeepsUnknownType(t *testing.T) {
	section := NormalizeSection(models.Section{ID: "x", Type: "video-embed"})
	if section.Type != "video-embed" {
		t.Fatalf("unknown type rewritten to %q", section.Type)
	}
}

func TestNormalizeSectionsSortsByPersistedOrderAndRenumbers(t *testing.T) {
	sections := NormalizeSections([]models.Section{
		{ID: "c", Type: "text", Order: 7},
		{ID: "a", Type: "text", Order: 2},
		{ID: "b", Type: "text", Order: 5},
	})

	got := []string{sections[0].ID, sections[1].ID, sections[2].ID}
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted order = %v, want %v", got, want)
		}
	}
	assertDenseOrder(t, sections)
}

func TestNormalizeSectionsReplacesDuplicateIDs(t *testing.T) {
	sections := NormalizeSections([]models.Section{
		{ID: "dup", Type: "text"},
		{ID: "dup", Type: "text"},
	})

	if sections[0].ID == sections[1].ID {
		t.Fatalf("duplicate id survived: %q", sections[0].ID)
	}
}

func TestNormalizeSectionsEmptyInput(t *testing.T) {
	sections := NormalizeSections(nil)
	if sections == nil || len(sections) != 0 {
		t.Fatalf("expected empty list, got %v", sections)
	}
}

func TestNormalizeCTAButtonStyles(t *testing.T) {
	section := NormalizeSection(models.Section{
		ID:   "cta",
		Type: constants.SectionCTA,
		Buttons: []models.SectionButton{
			{Text: "Prendre rendez-vous", Style: "fancy"},
			{Text: "En savoir plus", Style: "secondary"},
		},
	})

	if section.Buttons[0].Style != constants.DefaultButtonStyle {
		t.Fatalf("unknown style kept: %q", section.Buttons[0].Style)
	}
	if section.Buttons[1].Style != constants.SecondaryButtonStyle {
		t.Fatalf("secondary style lost: %q", section.Buttons[1].Style)
	}
}
