package service

import (
	"encoding/json"
	"sync"
	"time"

	"sophrologie-backend/internal/models"
	"sophrologie-backend/pkg/logger"
)

// SessionState describes where an edit session is in its save lifecycle.
type SessionState string

const (
	StateLoading    SessionState = "loading"
	StateReady      SessionState = "ready"
	StateSaving     SessionState = "saving"
	StateAutosaving SessionState = "autosaving"
	StateError      SessionState = "error"
)

// EditSession holds the working copy of one page while an admin edits it.
// seq counts mutations, saveGen counts save attempts; together they decide
// whether a finished save may clear the dirty flag or must be discarded
// because a newer save superseded it.
type EditSession struct {
	mu sync.Mutex

	// saveMu serializes repository writes for this session. It is never
	// acquired while mu is held.
	saveMu sync.Mutex

	pageID string
	page   *models.Page
	state  SessionState

	seq     uint64
	saveGen uint64
	dirty   bool

	lastError      error
	savedSnapshot  string
	loadedModified time.Time
	autosaveTimer  *time.Timer
}

// SessionStatus is the observable part of a session, returned to the editor
// UI so it can show "saving", "all changes saved" and error banners.
type SessionStatus struct {
	PageID             string       `json:"pageId"`
	State              SessionState `json:"state"`
	HasUnsavedChanges  bool         `json:"hasUnsavedChanges"`
	AutosavePending    bool         `json:"autosavePending"`
	LastError          string       `json:"lastError,omitempty"`
	LoadedVersion      int          `json:"loadedVersion"`
	SectionsCount      int          `json:"sectionsCount"`
	LastModifiedSource time.Time    `json:"lastModifiedSource"`
}

// EditorService coordinates edit sessions and their saves. There is at most
// one session per page id, at most one save in flight per session, and the
// result of a superseded save is never applied.
type EditorService struct {
	mu       sync.Mutex
	sessions map[string]*EditSession

	pages         *PageService
	autosaveDelay time.Duration
}

func NewEditorService(pages *PageService, autosaveDelay time.Duration) *EditorService {
	return &EditorService{
		sessions:      make(map[string]*EditSession),
		pages:         pages,
		autosaveDelay: autosaveDelay,
	}
}

// OpenSession loads the page into an edit session, reusing an existing
// session so two admin tabs see the same working copy. Reopening a session
// that has unsaved changes keeps them.
func (s *EditorService) OpenSession(pageID string) (*models.Page, error) {
	session, err := s.session(pageID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	return session.page.Clone(), nil
}

// Document returns the current working copy without creating a session.
func (s *EditorService) Document(pageID string) (*models.Page, error) {
	s.mu.Lock()
	session, ok := s.sessions[pageID]
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	return session.page.Clone(), nil
}

// Status reports the session's save lifecycle for the editor UI.
func (s *EditorService) Status(pageID string) (*SessionStatus, error) {
	s.mu.Lock()
	session, ok := s.sessions[pageID]
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	status := &SessionStatus{
		PageID:             session.pageID,
		State:              session.state,
		HasUnsavedChanges:  session.dirty,
		AutosavePending:    session.autosaveTimer != nil,
		LoadedVersion:      session.page.CurrentVersion,
		SectionsCount:      len(session.page.Sections),
		LastModifiedSource: session.loadedModified,
	}
	if session.lastError != nil {
		status.LastError = session.lastError.Error()
	}
	return status, nil
}

// Apply runs one section list operation against the working copy. The
// mutation function must be total; when it returns the list unchanged the
// session stays clean and no autosave is scheduled.
func (s *EditorService) Apply(pageID string, mutate func(models.PageSections) (models.PageSections, string)) (*models.Page, string, error) {
	session, err := s.session(pageID)
	if err != nil {
		return nil, "", err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	before := session.page.Sections
	after, newID := mutate(before)
	if after.Equal(before) {
		return session.page.Clone(), newID, nil
	}

	session.page.Sections = renumberSections(after)
	session.markDirtyLocked()
	s.scheduleAutosaveLocked(session)

	return session.page.Clone(), newID, nil
}

// ReplaceContent swaps the whole working document, used by the save and
// autosave endpoints that carry full page content from the client.
func (s *EditorService) ReplaceContent(pageID string, title, metaDescription string, sections models.PageSections) (*models.Page, error) {
	session, err := s.session(pageID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	normalized := NormalizeSections(sections)
	if session.page.Title == title &&
		session.page.MetaDescription == metaDescription &&
		session.page.Sections.Equal(normalized) {
		return session.page.Clone(), nil
	}

	session.page.Title = title
	session.page.MetaDescription = metaDescription
	session.page.Sections = normalized
	session.markDirtyLocked()

	return session.page.Clone(), nil
}

// Save persists the working copy now. A save while another save is in flight
// supersedes it: the stale attempt either skips its write or has its result
// discarded, and the newest attempt writes last. Force skips the concurrent
// modification check. Content still referencing a staged image upload is
// rejected until the upload completes.
func (s *EditorService) Save(pageID string, createVersion bool, comment, savedBy string, force bool) (*models.Page, error) {
	session, err := s.session(pageID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	session.cancelAutosaveLocked()

	if ids := PendingUploads(session.page.Sections); len(ids) > 0 {
		session.mu.Unlock()
		return nil, ErrPendingUpload
	}

	if !force {
		if err := s.checkStaleLocked(session); err != nil {
			session.mu.Unlock()
			return nil, err
		}
	}

	return s.performSave(session, createVersion, comment, savedBy, StateSaving)
}

// Autosave persists the working copy without creating a version. It is a
// no-op when the content equals what was last saved, so an idle editor never
// touches the database.
func (s *EditorService) Autosave(pageID string) (*models.Page, bool, error) {
	s.mu.Lock()
	session, ok := s.sessions[pageID]
	s.mu.Unlock()
	if !ok {
		return nil, false, ErrSessionNotFound
	}

	session.mu.Lock()
	session.cancelAutosaveLocked()

	if session.contentSnapshotLocked() == session.savedSnapshot {
		session.dirty = false
		page := session.page.Clone()
		session.mu.Unlock()
		return page, false, nil
	}

	page, err := s.performSave(session, false, "", "autosave", StateAutosaving)
	return page, err == nil, err
}

// RestoreVersion restores a snapshot through the regular save path, then
// re-fetches the page so the session is reseeded from the stored canonical
// state rather than from the save's return value.
func (s *EditorService) RestoreVersion(pageID string, versionNumber int, comment, restoredBy string) (*models.Page, error) {
	if _, err := s.pages.RestoreVersion(pageID, versionNumber, comment, restoredBy); err != nil {
		return nil, err
	}

	page, err := s.pages.GetPage(pageID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	session, ok := s.sessions[pageID]
	s.mu.Unlock()
	if ok {
		session.mu.Lock()
		session.cancelAutosaveLocked()
		session.page = page.Clone()
		session.dirty = false
		session.state = StateReady
		session.lastError = nil
		session.savedSnapshot = session.contentSnapshotLocked()
		session.loadedModified = page.LastModified
		session.mu.Unlock()
	}

	return page, nil
}

// CloseSession drops the working copy. Unsaved changes are lost, which is
// what discarding an edit means.
func (s *EditorService) CloseSession(pageID string) {
	s.mu.Lock()
	session, ok := s.sessions[pageID]
	delete(s.sessions, pageID)
	s.mu.Unlock()

	if ok {
		session.mu.Lock()
		session.cancelAutosaveLocked()
		session.mu.Unlock()
	}
}

func (s *EditorService) session(pageID string) (*EditSession, error) {
	s.mu.Lock()
	if session, ok := s.sessions[pageID]; ok {
		s.mu.Unlock()
		return session, nil
	}

	session := &EditSession{pageID: pageID, state: StateLoading}
	s.sessions[pageID] = session
	s.mu.Unlock()

	session.mu.Lock()
	defer session.mu.Unlock()

	page, err := s.pages.GetPage(pageID)
	if err != nil {
		s.mu.Lock()
		delete(s.sessions, pageID)
		s.mu.Unlock()
		return nil, err
	}

	session.page = page.Clone()
	session.state = StateReady
	session.savedSnapshot = session.contentSnapshotLocked()
	session.loadedModified = page.LastModified
	return session, nil
}

// performSave claims a save generation, waits its turn on the session's save
// mutex, then writes and reapplies the outcome only if no newer save attempt
// claimed the session in the meantime. A save superseded while it queued
// never issues its write, so writes reach the repository one at a time and
// the last one carries the newest content. Called with session.mu held;
// always unlocks.
func (s *EditorService) performSave(session *EditSession, createVersion bool, comment, savedBy string, state SessionState) (*models.Page, error) {
	session.saveGen++
	gen := session.saveGen
	session.state = state
	pageID := session.pageID
	session.mu.Unlock()

	session.saveMu.Lock()
	defer session.saveMu.Unlock()

	session.mu.Lock()
	if gen != session.saveGen {
		// Superseded while waiting for the previous write; skip ours.
		page := session.page.Clone()
		session.mu.Unlock()
		return page, nil
	}

	seq := session.seq
	req := &models.SavePageRequest{
		Title:           session.page.Title,
		MetaDescription: session.page.MetaDescription,
		Sections:        session.page.Sections.Clone(),
		Status:          session.page.Status,
		CreateVersion:   createVersion,
		VersionComment:  comment,
	}
	session.mu.Unlock()

	saved, err := s.pages.SavePage(pageID, req, savedBy)

	session.mu.Lock()
	defer session.mu.Unlock()

	if gen != session.saveGen {
		// A newer save attempt owns the session outcome now.
		return session.page.Clone(), nil
	}

	if err != nil {
		session.state = StateError
		session.lastError = err
		logger.Error(err, "Page save failed", map[string]interface{}{"page_id": pageID})
		return nil, err
	}

	session.state = StateReady
	session.lastError = nil
	session.loadedModified = saved.LastModified
	session.page.CurrentVersion = saved.CurrentVersion
	session.page.LastModified = saved.LastModified

	// Mutations that landed while the save was in flight keep the session
	// dirty; the snapshot reflects only what was actually written.
	session.dirty = session.seq != seq
	session.savedSnapshot = snapshotContent(req.Title, req.MetaDescription, req.Sections)

	return session.page.Clone(), nil
}

// checkStaleLocked detects a page modified outside this session since it was
// loaded. The caller surfaces ErrStaleSave as a confirmation prompt.
func (s *EditorService) checkStaleLocked(session *EditSession) error {
	persisted, err := s.pages.GetPage(session.pageID)
	if err != nil {
		return err
	}
	if persisted.LastModified.After(session.loadedModified) {
		return ErrStaleSave
	}
	return nil
}

func (s *EditorService) scheduleAutosaveLocked(session *EditSession) {
	if s.autosaveDelay <= 0 {
		return
	}

	pageID := session.pageID
	if session.autosaveTimer != nil {
		session.autosaveTimer.Stop()
	}
	session.autosaveTimer = time.AfterFunc(s.autosaveDelay, func() {
		if _, _, err := s.Autosave(pageID); err != nil && err != ErrSessionNotFound {
			logger.Error(err, "Autosave failed", map[string]interface{}{"page_id": pageID})
		}
	})
}

func (session *EditSession) markDirtyLocked() {
	session.seq++
	session.dirty = true
	if session.state == StateError || session.state == StateReady {
		session.state = StateReady
	}
}

func (session *EditSession) cancelAutosaveLocked() {
	if session.autosaveTimer != nil {
		session.autosaveTimer.Stop()
		session.autosaveTimer = nil
	}
}

func (session *EditSession) contentSnapshotLocked() string {
	return snapshotContent(session.page.Title, session.page.MetaDescription, session.page.Sections)
}

// snapshotContent is the content-equality key for the autosave short circuit.
// Order is part of the marshalled form, so a reorder counts as a change even
// when the section set is identical.
func snapshotContent(title, metaDescription string, sections models.PageSections) string {
	raw, err := json.Marshal(struct {
		Title           string              `json:"title"`
		MetaDescription string              `json:"metaDescription"`
		Sections        models.PageSections `json:"sections"`
	}{title, metaDescription, sections})
	if err != nil {
		return ""
	}
	return string(raw)
}
