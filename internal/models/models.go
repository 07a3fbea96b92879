package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Page is the full section document for one logical page of the site. Pages
// are seeded out-of-band with a fixed PageID each; the editor mutates their
// section lists but never creates or deletes pages.
type Page struct {
	ID        uint           `gorm:"primarykey" json:"-"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	PageID          string       `gorm:"uniqueIndex;not null" json:"pageId"`
	Title           string       `gorm:"not null" json:"title"`
	MetaDescription string       `json:"metaDescription,omitempty"`
	Sections        PageSections `gorm:"type:jsonb" json:"sections"`
	Status          string       `gorm:"type:varchar(16);default:'draft'" json:"status"`

	// Bookkeeping owned by the persistence layer, never touched by editing
	// operations directly.
	CurrentVersion int       `gorm:"default:0" json:"currentVersion"`
	LastModified   time.Time `json:"lastModified"`
}

// Clone deep-copies the document so an edit session can mutate it without
// aliasing the fetched row.
func (p *Page) Clone() *Page {
	if p == nil {
		return nil
	}
	copied := *p
	copied.Sections = p.Sections.Clone()
	return &copied
}

// PageVersion is a named restorable snapshot of a page document.
type PageVersion struct {
	ID        uint           `gorm:"primarykey" json:"-"`
	CreatedAt time.Time      `json:"createdAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	PageID        string `gorm:"not null;index:idx_page_versions_page_number,priority:1" json:"pageId"`
	VersionNumber int    `gorm:"not null;index:idx_page_versions_page_number,priority:2" json:"versionNumber"`
	Comment       string `json:"comment"`
	CreatedBy     string `json:"createdBy"`

	Title           string       `json:"title"`
	MetaDescription string       `json:"metaDescription,omitempty"`
	Sections        PageSections `gorm:"type:jsonb" json:"sections"`
	SectionsCount   int          `json:"sectionsCount"`
}

// PageVersionSummary is the history-list view of a snapshot, without the
// section payload.
type PageVersionSummary struct {
	VersionNumber int       `json:"versionNumber"`
	CreatedAt     time.Time `json:"createdAt"`
	Comment       string    `json:"comment"`
	SectionsCount int       `json:"sectionsCount"`
	CreatedBy     string    `json:"createdBy"`
}

type Testimonial struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Author   string `gorm:"not null" json:"author"`
	Email    string `json:"-"`
	Message  string `gorm:"type:text;not null" json:"message"`
	Rating   int    `gorm:"default:0" json:"rating,omitempty"`
	Approved bool   `gorm:"default:false" json:"approved"`
}

type ContactMessage struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"not null" json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `gorm:"type:text;not null" json:"message"`
	Read    bool   `gorm:"default:false" json:"read"`
}

type AppointmentRequest struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name          string `gorm:"not null" json:"name"`
	Email         string `gorm:"not null" json:"email"`
	Phone         string `json:"phone"`
	PreferredDate string `json:"preferred_date"`
	Message       string `gorm:"type:text" json:"message"`
	Handled       bool   `gorm:"default:false" json:"handled"`
}

type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Role     string `gorm:"type:varchar(32);default:'admin'" json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SavePageRequest carries a full document for the manual save path. The
// optional version fields label a snapshot taken alongside the save.
type SavePageRequest struct {
	Title           string    `json:"title" binding:"required"`
	MetaDescription string    `json:"metaDescription"`
	Sections        []Section `json:"sections"`
	Status          string    `json:"status"`
	CreateVersion   bool      `json:"createVersion"`
	VersionComment  string    `json:"versionComment"`
}

type AddSectionRequest struct {
	Type string `json:"type" binding:"required"`
}

// UpdateSectionFieldRequest addresses one field of a section by dotted path,
// e.g. "title" or "image.alt". Value keeps the caller's JSON type.
type UpdateSectionFieldRequest struct {
	Path  string          `json:"path" binding:"required"`
	Value json.RawMessage `json:"value"`
}

type UpdateItemFieldRequest struct {
	Field     string          `json:"field" binding:"required"`
	Index     int             `json:"index"`
	ItemField string          `json:"itemField" binding:"required"`
	Value     json.RawMessage `json:"value"`
}

type AddItemRequest struct {
	Field string `json:"field" binding:"required"`
}

type ReorderSectionsRequest struct {
	FromIndex int `json:"fromIndex"`
	ToIndex   int `json:"toIndex"`
}

type SetVisibilityRequest struct {
	Visible *bool `json:"visible" binding:"required"`
}

type RestoreVersionRequest struct {
	Comment string `json:"comment"`
}

type SubmitTestimonialRequest struct {
	Author  string `json:"author" binding:"required,min=2,max=100"`
	Email   string `json:"email" binding:"omitempty,email"`
	Message string `json:"message" binding:"required,min=10,max=2000"`
	Rating  int    `json:"rating" binding:"omitempty,min=1,max=5"`
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"omitempty,max=30"`
	Subject string `json:"subject" binding:"omitempty,max=200"`
	Message string `json:"message" binding:"required,min=10,max=5000"`
}

type CreateAppointmentRequest struct {
	Name          string `json:"name" binding:"required,min=2,max=100"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone" binding:"omitempty,max=30"`
	PreferredDate string `json:"preferred_date" binding:"omitempty,max=64"`
	Message       string `json:"message" binding:"omitempty,max=2000"`
}
