package service

import (
	"strings"
	"testing"

	"sophrologie-backend/internal/models"
)

func TestFieldEditorCommitUnchangedIsNoOp(t *testing.T) {
	editor := NewFieldEditor("Bienvenue")

	value, changed := editor.Commit()
	if changed {
		t.Fatal("commit without edits reported a change")
	}
	if value != "Bienvenue" {
		t.Fatalf("value = %q", value)
	}
}

func TestFieldEditorCommitChanged(t *testing.T) {
	editor := NewFieldEditor("Bienvenue")
	editor.SetDraft("Bienvenue au cabinet")

	value, changed := editor.Commit()
	if !changed {
		t.Fatal("commit did not report the change")
	}
	if value != "Bienvenue au cabinet" {
		t.Fatalf("value = %q", value)
	}

	// A second commit is inert.
	value, changed = editor.Commit()
	if changed || value != "Bienvenue" {
		t.Fatalf("second commit returned (%q, %v)", value, changed)
	}
}

func TestFieldEditorCancelDiscardsDraft(t *testing.T) {
	editor := NewFieldEditor("Bienvenue")
	editor.SetDraft("Brouillon")

	if value := editor.Cancel(); value != "Bienvenue" {
		t.Fatalf("cancel returned %q", value)
	}
	if editor.Editing() {
		t.Fatal("editor still editing after cancel")
	}

	editor.SetDraft("trop tard")
	if editor.Draft() != "Bienvenue" {
		t.Fatalf("draft accepted after cancel: %q", editor.Draft())
	}
}

func TestImageFieldEditorSetURL(t *testing.T) {
	editor := NewImageFieldEditor("/uploads/old.jpg")
	editor.SetURL("  https://example.fr/photo.jpg  ")

	value, changed := editor.Commit()
	if !changed || value != "https://example.fr/photo.jpg" {
		t.Fatalf("commit returned (%q, %v)", value, changed)
	}
}

func TestImageFieldEditorStageLocalFile(t *testing.T) {
	editor := NewImageFieldEditor("/uploads/old.jpg")

	staged := editor.StageLocalFile("Photo Du Cabinet.JPG")
	if !strings.HasPrefix(staged, "/uploads/pending/") {
		t.Fatalf("staged reference %q", staged)
	}
	if !strings.HasSuffix(staged, ".jpg") {
		t.Fatalf("extension not kept: %q", staged)
	}
	if !IsPendingUpload(staged) {
		t.Fatal("staged reference not recognized as pending")
	}

	value, changed := editor.Commit()
	if !changed || value != staged {
		t.Fatalf("commit returned (%q, %v)", value, changed)
	}
}

func TestImageFieldEditorCancelKeepsOriginal(t *testing.T) {
	editor := NewImageFieldEditor("/uploads/old.jpg")
	editor.StageLocalFile("new.png")

	if value := editor.Cancel(); value != "/uploads/old.jpg" {
		t.Fatalf("cancel returned %q", value)
	}
}

func TestIsPendingUpload(t *testing.T) {
	if IsPendingUpload("/uploads/hero.jpg") {
		t.Fatal("stored upload flagged as pending")
	}
	if !IsPendingUpload("/uploads/pending/abc.jpg") {
		t.Fatal("pending upload not flagged")
	}
}

func TestPendingUploadsFindsStagedReferences(t *testing.T) {
	sections := models.PageSections{
		{ID: "sec-a", Type: "hero", Image: &models.SectionImage{URL: "/uploads/hero.jpg"}},
		{ID: "sec-b", Type: "image-text", Image: &models.SectionImage{URL: "/uploads/pending/abc.jpg"}},
		{ID: "sec-c", Type: "card-grid", Items: []models.SectionItem{
			{Title: "Séance"},
			{Title: "Atelier", Image: &models.SectionImage{URL: "/uploads/pending/def.png"}},
		}},
	}

	ids := PendingUploads(sections)
	if len(ids) != 2 || ids[0] != "sec-b" || ids[1] != "sec-c" {
		t.Fatalf("PendingUploads = %v", ids)
	}

	if got := PendingUploads(nil); len(got) != 0 {
		t.Fatalf("PendingUploads(nil) = %v", got)
	}
}
