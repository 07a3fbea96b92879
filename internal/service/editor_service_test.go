package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sophrologie-backend/internal/models"
	"sophrologie-backend/pkg/cache"
)

type memoryPageRepo struct {
	mu    sync.Mutex
	pages map[string]*models.Page
	saves int
	gets  int
}

func newMemoryPageRepo(pages ...*models.Page) *memoryPageRepo {
	repo := &memoryPageRepo{pages: make(map[string]*models.Page)}
	for _, page := range pages {
		repo.pages[page.PageID] = page.Clone()
	}
	return repo
}

func (r *memoryPageRepo) Create(page *models.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages[page.PageID] = page.Clone()
	return nil
}

func (r *memoryPageRepo) Update(page *models.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages[page.PageID] = page.Clone()
	r.saves++
	return nil
}

func (r *memoryPageRepo) GetByPageID(pageID string) (*models.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	page, ok := r.pages[pageID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return page.Clone(), nil
}

func (r *memoryPageRepo) GetAll() ([]models.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pages []models.Page
	for _, page := range r.pages {
		pages = append(pages, *page.Clone())
	}
	return pages, nil
}

func (r *memoryPageRepo) GetAllPublished() ([]models.Page, error) {
	return r.GetAll()
}

func (r *memoryPageRepo) ExistsByPageID(pageID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pages[pageID]
	return ok, nil
}

func (r *memoryPageRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func (r *memoryPageRepo) getCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gets
}

// gatedPageRepo holds the first Update open until released, letting a test
// line up a second save while the first write is still in flight.
type gatedPageRepo struct {
	*memoryPageRepo
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedPageRepo(pages ...*models.Page) *gatedPageRepo {
	return &gatedPageRepo{
		memoryPageRepo: newMemoryPageRepo(pages...),
		entered:        make(chan struct{}),
		release:        make(chan struct{}),
	}
}

func (r *gatedPageRepo) Update(page *models.Page) error {
	first := false
	r.once.Do(func() { first = true })
	if first {
		close(r.entered)
		<-r.release
	}
	return r.memoryPageRepo.Update(page)
}

type memoryVersionRepo struct {
	mu       sync.Mutex
	versions []models.PageVersion
}

func (r *memoryVersionRepo) Create(version *models.PageVersion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *version
	stored.Sections = version.Sections.Clone()
	r.versions = append(r.versions, stored)
	return nil
}

func (r *memoryVersionRepo) GetByPageID(pageID string) ([]models.PageVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.PageVersion
	for i := len(r.versions) - 1; i >= 0; i-- {
		if r.versions[i].PageID == pageID {
			result = append(result, r.versions[i])
		}
	}
	return result, nil
}

func (r *memoryVersionRepo) GetByVersionNumber(pageID string, versionNumber int) (*models.PageVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.versions {
		if r.versions[i].PageID == pageID && r.versions[i].VersionNumber == versionNumber {
			version := r.versions[i]
			return &version, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryVersionRepo) LatestVersionNumber(pageID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	latest := 0
	for i := range r.versions {
		if r.versions[i].PageID == pageID && r.versions[i].VersionNumber > latest {
			latest = r.versions[i].VersionNumber
		}
	}
	return latest, nil
}

func (r *memoryVersionRepo) PruneOlderThan(pageID string, keep int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	latest := 0
	for i := range r.versions {
		if r.versions[i].PageID == pageID && r.versions[i].VersionNumber > latest {
			latest = r.versions[i].VersionNumber
		}
	}
	cutoff := latest - keep
	if cutoff <= 0 {
		return 0, nil
	}
	var kept []models.PageVersion
	var removed int64
	for _, version := range r.versions {
		if version.PageID == pageID && version.VersionNumber <= cutoff {
			removed++
			continue
		}
		kept = append(kept, version)
	}
	r.versions = kept
	return removed, nil
}

func testPage(pageID string) *models.Page {
	return &models.Page{
		PageID: pageID,
		Title:  "Accueil",
		Status: "published",
		Sections: NormalizeSections([]models.Section{
			{ID: "sec-a", Type: "hero", Title: "Bienvenue"},
			{ID: "sec-b", Type: "text", Content: "La sophrologie."},
		}),
		LastModified: time.Now().Add(-time.Hour),
	}
}

func newEditorFixture(t *testing.T, autosaveDelay time.Duration) (*EditorService, *memoryPageRepo, *memoryVersionRepo) {
	t.Helper()
	pageRepo := newMemoryPageRepo(testPage("home"))
	versionRepo := &memoryVersionRepo{}
	disabledCache, err := cache.NewCache("", false)
	require.NoError(t, err)

	pages := NewPageService(pageRepo, versionRepo, disabledCache)
	return NewEditorService(pages, autosaveDelay), pageRepo, versionRepo
}

func TestOpenSessionReturnsWorkingCopy(t *testing.T) {
	editor, _, _ := newEditorFixture(t, 0)

	page, err := editor.OpenSession("home")
	require.NoError(t, err)
	require.Equal(t, "home", page.PageID)
	require.Len(t, page.Sections, 2)

	// Mutating the returned copy must not reach the session.
	page.Sections[0].Title = "Hacked"
	again, err := editor.OpenSession("home")
	require.NoError(t, err)
	require.Equal(t, "Bienvenue", again.Sections[0].Title)
}

func TestOpenSessionUnknownPage(t *testing.T) {
	editor, _, _ := newEditorFixture(t, 0)

	_, err := editor.OpenSession("nope")
	require.ErrorIs(t, err, ErrPageNotFound)
}

func TestApplyMarksSessionDirty(t *testing.T) {
	editor, _, _ := newEditorFixture(t, 0)

	_, err := editor.OpenSession("home")
	require.NoError(t, err)

	_, _, err = editor.Apply("home", func(sections models.PageSections) (models.PageSections, string) {
		return UpdateField(sections, "sec-a", "title", "Nouveau titre"), ""
	})
	require.NoError(t, err)

	status, err := editor.Status("home")
	require.NoError(t, err)
	require.True(t, status.HasUnsavedChanges)
	require.Equal(t, StateReady, status.State)
}

func TestApplyNoOpStaysClean(t *testing.T) {
	editor, _, _ := newEditorFixture(t, 0)

	_, err := editor.OpenSession("home")
	require.NoError(t, err)

	_, _, err = editor.Apply("home", func(sections models.PageSections) (models.PageSections, string) {
		return DeleteSection(sections, "gone"), ""
	})
	require.NoError(t, err)

	status, err := editor.Status("home")
	require.NoError(t, err)
	require.False(t, status.HasUnsavedChanges)
	require.False(t, status.AutosavePending)
}

func TestSavePersistsAndClearsDirty(t *testing.T) {
	editor, pageRepo, versionRepo := newEditorFixture(t, 0)

	_, err := editor.OpenSession("home")
	require.NoError(t, err)

	_, _, err = editor.Apply("home", func(sections models.PageSections) (models.PageSections, string) {
		return AddSection(sections, "cta")
	})
	require.NoError(t, err)

	saved, err := editor.Save("home", true, "Ajout CTA", "admin@example.fr", false)
	require.NoError(t, err)
	require.Equal(t, 1, saved.CurrentVersion)

	persisted, err := pageRepo.GetByPageID("home")
	require.NoError(t, err)
	require.Len(t, persisted.Sections, 3)

	versions, err := versionRepo.GetByPageID("home")
	require.NoError(t, err)
	require.Len(t, versions, 1)
	require.Equal(t, "Ajout CTA", versions[0].Comment)

	status, err := editor.Status("home")
	require.NoError(t, err)
	require.False(t, status.HasUnsavedChanges)
	require.Equal(t, StateReady, status.State)
}

func TestAutosaveSkipsUnchangedContent(t *testing.T) {
	editor, pageRepo, _ := newEditorFixture(t, 0)

	_, err := editor.OpenSession("home")
	require.NoError(t, err)

	_, saved, err := editor.Autosave("home")
	require.NoError(t, err)
	require.False(t, saved, "unchanged content must not hit the database")
	require.Equal(t, 0, pageRepo.saveCount())

	_, _, err = editor.Apply("home", func(sections models.PageSections) (models.PageSections, string) {
		return UpdateField(sections, "sec-b", "content", "Texte modifié."), ""
	})
	require.NoError(t, err)

	_, saved, err = editor.Autosave("home")
	require.NoError(t, err)
	require.True(t, saved)
	require.Equal(t, 1, pageRepo.saveCount())

	// The same content again short-circuits.
	_, saved, err = editor.Autosave("home")
	require.NoError(t, err)
	require.False(t, saved)
	require.Equal(t, 1, pageRepo.saveCount())
}

func TestDebouncedAutosaveFires(t *testing.T) {
	editor, pageRepo, _ := newEditorFixture(t, 20*time.Millisecond)

	_, err := editor.OpenSession("home")
	require.NoError(t, err)

	_, _, err = editor.Apply("home", func(sections models.PageSections) (models.PageSections, string) {
		return UpdateField(sections, "sec-a", "subtitle", "Respirer, se poser"), ""
	})
	require.NoError(t, err)

	status, err := editor.Status("home")
	require.NoError(t, err)
	require.True(t, status.AutosavePending)

	require.Eventually(t, func() bool {
		return pageRepo.saveCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	status, err = editor.Status("home")
	require.NoError(t, err)
	require.False(t, status.HasUnsavedChanges)
}

func TestAutosaveDebounceResetsOnMutationBurst(t *testing.T) {
	editor, pageRepo, _ := newEditorFixture(t, 100*time.Millisecond)

	_, err := editor.OpenSession("home")
	require.NoError(t, err)

	// Each edit lands well inside the debounce window of the previous one.
	for _, title := range []string{"Un", "Deux", "Trois", "Quatre"} {
		_, _, err = editor.Apply("home", func(sections models.PageSections) (models.PageSections, string) {
			return UpdateField(sections, "sec-a", "title", title), ""
		})
		require.NoError(t, err)
		require.Equal(t, 0, pageRepo.saveCount(), "autosave fired inside the burst")
		time.Sleep(20 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return pageRepo.saveCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// The whole burst collapses into that one save, carrying the last edit.
	time.Sleep(250 * time.Millisecond)
	require.Equal(t, 1, pageRepo.saveCount())

	persisted, err := pageRepo.GetByPageID("home")
	require.NoError(t, err)
	require.Equal(t, "Quatre", persisted.Sections[0].Title)
}

func TestOverlappingSavesKeepNewestContent(t *testing.T) {
	pageRepo := newGatedPageRepo(testPage("home"))
	disabledCache, err := cache.NewCache("", false)
	require.NoError(t, err)
	editor := NewEditorService(NewPageService(pageRepo, &memoryVersionRepo{}, disabledCache), 0)

	page, err := editor.OpenSession("home")
	require.NoError(t, err)

	_, err = editor.ReplaceContent("home", page.Title, "V1", page.Sections)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = editor.Save("home", false, "", "admin@example.fr", true)
	}()
	<-pageRepo.entered // the first save is inside the repository write

	// A newer edit and save arrive while that write is still in flight.
	_, err = editor.ReplaceContent("home", page.Title, "V2", page.Sections)
	require.NoError(t, err)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = editor.Save("home", false, "", "admin@example.fr", true)
	}()
	time.Sleep(20 * time.Millisecond)

	close(pageRepo.release)
	wg.Wait()

	// The newer content must win regardless of how the writes interleaved,
	// and the session must know there is nothing left to save.
	persisted, err := pageRepo.GetByPageID("home")
	require.NoError(t, err)
	require.Equal(t, "V2", persisted.MetaDescription)

	status, err := editor.Status("home")
	require.NoError(t, err)
	require.False(t, status.HasUnsavedChanges)

	_, saved, err := editor.Autosave("home")
	require.NoError(t, err)
	require.False(t, saved)

	final, err := pageRepo.GetByPageID("home")
	require.NoError(t, err)
	require.Equal(t, "V2", final.MetaDescription)
}

func TestSaveRefusesPendingUploadReference(t *testing.T) {
	editor, pageRepo, _ := newEditorFixture(t, 0)

	_, err := editor.OpenSession("home")
	require.NoError(t, err)

	staged := NewImageFieldEditor("")
	pending := staged.StageLocalFile("photo.jpg")

	_, _, err = editor.Apply("home", func(sections models.PageSections) (models.PageSections, string) {
		return UpdateField(sections, "sec-a", "image.url", pending), ""
	})
	require.NoError(t, err)

	_, err = editor.Save("home", false, "", "admin@example.fr", false)
	require.ErrorIs(t, err, ErrPendingUpload)
	require.Equal(t, 0, pageRepo.saveCount())

	// Once the upload handler resolved the reference, the save goes through.
	_, _, err = editor.Apply("home", func(sections models.PageSections) (models.PageSections, string) {
		return UpdateField(sections, "sec-a", "image.url", "/uploads/photo.jpg"), ""
	})
	require.NoError(t, err)

	_, err = editor.Save("home", false, "", "admin@example.fr", false)
	require.NoError(t, err)
	require.Equal(t, 1, pageRepo.saveCount())
}

func TestSaveDetectsConcurrentModification(t *testing.T) {
	editor, pageRepo, _ := newEditorFixture(t, 0)

	_, err := editor.OpenSession("home")
	require.NoError(t, err)

	// Another writer touches the persisted page after the session loaded it.
	persisted, err := pageRepo.GetByPageID("home")
	require.NoError(t, err)
	persisted.Title = "Modifié ailleurs"
	persisted.LastModified = time.Now()
	require.NoError(t, pageRepo.Update(persisted))

	_, _, err = editor.Apply("home", func(sections models.PageSections) (models.PageSections, string) {
		return UpdateField(sections, "sec-a", "title", "Ma version"), ""
	})
	require.NoError(t, err)

	_, err = editor.Save("home", false, "", "admin@example.fr", false)
	require.ErrorIs(t, err, ErrStaleSave)

	// Force overwrites.
	saved, err := editor.Save("home", false, "", "admin@example.fr", true)
	require.NoError(t, err)
	require.Equal(t, "Accueil", saved.Title)

	final, err := pageRepo.GetByPageID("home")
	require.NoError(t, err)
	require.Equal(t, "Ma version", final.Sections[0].Title)
}

func TestRestoreVersionGoesThroughSavePath(t *testing.T) {
	editor, _, versionRepo := newEditorFixture(t, 0)

	_, err := editor.OpenSession("home")
	require.NoError(t, err)

	// Save v1, change, save v2.
	_, err = editor.Save("home", true, "Première version", "admin@example.fr", false)
	require.NoError(t, err)

	_, _, err = editor.Apply("home", func(sections models.PageSections) (models.PageSections, string) {
		return DeleteSection(sections, "sec-b"), ""
	})
	require.NoError(t, err)

	_, err = editor.Save("home", true, "Texte supprimé", "admin@example.fr", false)
	require.NoError(t, err)

	restored, err := editor.RestoreVersion("home", 1, "", "admin@example.fr")
	require.NoError(t, err)
	require.Len(t, restored.Sections, 2)
	require.Equal(t, 3, restored.CurrentVersion, "restore must append a new version")

	versions, err := versionRepo.GetByPageID("home")
	require.NoError(t, err)
	require.Len(t, versions, 3)
	require.Equal(t, "Restored from version 1", versions[0].Comment)

	// The session's working copy now matches the restored document.
	doc, err := editor.Document("home")
	require.NoError(t, err)
	require.Len(t, doc.Sections, 2)
}

func TestRestoreVersionReloadsStoredPage(t *testing.T) {
	editor, pageRepo, _ := newEditorFixture(t, 0)

	_, err := editor.OpenSession("home")
	require.NoError(t, err)

	_, err = editor.Save("home", true, "Première version", "admin@example.fr", false)
	require.NoError(t, err)

	before := pageRepo.getCount()
	restored, err := editor.RestoreVersion("home", 1, "", "admin@example.fr")
	require.NoError(t, err)

	// The restore writes through the save path and then reads the page back,
	// so the session holds what storage holds, not the save's return value.
	require.GreaterOrEqual(t, pageRepo.getCount(), before+2)

	persisted, err := pageRepo.GetByPageID("home")
	require.NoError(t, err)
	require.Equal(t, persisted.CurrentVersion, restored.CurrentVersion)
	require.True(t, persisted.Sections.Equal(restored.Sections))
}

func TestRestoreUnknownVersion(t *testing.T) {
	editor, _, _ := newEditorFixture(t, 0)

	_, err := editor.OpenSession("home")
	require.NoError(t, err)

	_, err = editor.RestoreVersion("home", 42, "", "admin@example.fr")
	require.ErrorIs(t, err, ErrVersionNotFound)
}

func TestCloseSessionDropsWorkingCopy(t *testing.T) {
	editor, _, _ := newEditorFixture(t, 0)

	_, err := editor.OpenSession("home")
	require.NoError(t, err)

	_, _, err = editor.Apply("home", func(sections models.PageSections) (models.PageSections, string) {
		return UpdateField(sections, "sec-a", "title", "Perdu"), ""
	})
	require.NoError(t, err)

	editor.CloseSession("home")

	_, err = editor.Document("home")
	require.ErrorIs(t, err, ErrSessionNotFound)

	// Reopening loads the persisted content, without the discarded edit.
	page, err := editor.OpenSession("home")
	require.NoError(t, err)
	require.Equal(t, "Bienvenue", page.Sections[0].Title)
}

func TestReplaceContentShortCircuitsEqualContent(t *testing.T) {
	editor, _, _ := newEditorFixture(t, 0)

	page, err := editor.OpenSession("home")
	require.NoError(t, err)

	_, err = editor.ReplaceContent("home", page.Title, page.MetaDescription, page.Sections)
	require.NoError(t, err)

	status, err := editor.Status("home")
	require.NoError(t, err)
	require.False(t, status.HasUnsavedChanges)
}
