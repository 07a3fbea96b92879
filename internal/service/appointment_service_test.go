package service

import (
	"testing"

	"gorm.io/gorm"

	"sophrologie-backend/internal/models"
)

type memoryAppointmentRepo struct {
	nextID   uint
	requests map[uint]*models.AppointmentRequest
}

func newMemoryAppointmentRepo() *memoryAppointmentRepo {
	return &memoryAppointmentRepo{requests: make(map[uint]*models.AppointmentRequest)}
}

func (r *memoryAppointmentRepo) Create(request *models.AppointmentRequest) error {
	r.nextID++
	request.ID = r.nextID
	stored := *request
	r.requests[request.ID] = &stored
	return nil
}

func (r *memoryAppointmentRepo) Update(request *models.AppointmentRequest) error {
	stored := *request
	r.requests[request.ID] = &stored
	return nil
}

func (r *memoryAppointmentRepo) Delete(id uint) error {
	delete(r.requests, id)
	return nil
}

func (r *memoryAppointmentRepo) GetByID(id uint) (*models.AppointmentRequest, error) {
	request, ok := r.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *request
	return &copied, nil
}

func (r *memoryAppointmentRepo) GetAll() ([]models.AppointmentRequest, error) {
	var requests []models.AppointmentRequest
	for _, request := range r.requests {
		requests = append(requests, *request)
	}
	return requests, nil
}

func newAppointmentFixture() (*AppointmentService, *memoryAppointmentRepo) {
	repo := newMemoryAppointmentRepo()
	return NewAppointmentService(repo, NewEmailService(nil)), repo
}

func TestAppointmentMarkHandled(t *testing.T) {
	appointments, repo := newAppointmentFixture()

	request, err := appointments.Submit(models.CreateAppointmentRequest{
		Name:          "Marie",
		Email:         "marie@example.fr",
		PreferredDate: "2026-09-15",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	updated, err := appointments.MarkHandled(request.ID)
	if err != nil {
		t.Fatalf("MarkHandled: %v", err)
	}
	if !updated.Handled {
		t.Fatal("request not marked handled")
	}

	stored, err := repo.GetByID(request.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !stored.Handled {
		t.Fatal("handled flag not persisted")
	}
}

func TestAppointmentDelete(t *testing.T) {
	appointments, repo := newAppointmentFixture()

	request, err := appointments.Submit(models.CreateAppointmentRequest{
		Name:  "Marie",
		Email: "marie@example.fr",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if err := appointments.Delete(request.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(request.ID); err != gorm.ErrRecordNotFound {
		t.Fatalf("request still stored, err = %v", err)
	}

	if err := appointments.Delete(request.ID); err != ErrAppointmentNotFound {
		t.Fatalf("deleting a missing request returned %v", err)
	}
}
