package service

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
	"github.com/bloodlagbe/bloodlagbe-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testValidator() *validator.Validate {
	return validator.New()
}

func strPtr(s string) *string { return &s }

// activityStub records audit entries for assertions.
type activityStub struct {
	mu      sync.Mutex
	entries []ActivityEntry
}

func (a *activityStub) Record(ctx context.Context, entry ActivityEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *activityStub) ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	return nil, nil
}

// submissionRepoStub is an in-memory SubmissionRepository.
type submissionRepoStub struct {
	nextID      uint
	submissions map[uint]models.DonorListSubmission
}

func newSubmissionRepoStub() *submissionRepoStub {
	return &submissionRepoStub{nextID: 1, submissions: map[uint]models.DonorListSubmission{}}
}

func (r *submissionRepoStub) Create(ctx context.Context, submission *models.DonorListSubmission) error {
	submission.ID = r.nextID
	r.nextID++
	r.submissions[submission.ID] = *submission
	return nil
}

func (r *submissionRepoStub) GetByID(ctx context.Context, id uint) (models.DonorListSubmission, error) {
	submission, ok := r.submissions[id]
	if !ok {
		return models.DonorListSubmission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (r *submissionRepoStub) GetByIDForUser(ctx context.Context, id, userID uint) (models.DonorListSubmission, error) {
	submission, ok := r.submissions[id]
	if !ok || submission.SubmittedByUserID != userID {
		return models.DonorListSubmission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (r *submissionRepoStub) ListByStatus(ctx context.Context, status string) ([]models.DonorListSubmission, error) {
	var out []models.DonorListSubmission
	for _, submission := range r.submissions {
		if submission.Status == status {
			out = append(out, submission)
		}
	}
	return out, nil
}

func (r *submissionRepoStub) ListByOwner(ctx context.Context, userID uint) ([]models.DonorListSubmission, error) {
	var out []models.DonorListSubmission
	for _, submission := range r.submissions {
		if submission.SubmittedByUserID == userID {
			out = append(out, submission)
		}
	}
	return out, nil
}

func (r *submissionRepoStub) Update(ctx context.Context, submission *models.DonorListSubmission) error {
	if _, ok := r.submissions[submission.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.submissions[submission.ID] = *submission
	return nil
}

// reviewEnv is an in-memory ReviewRepository plus its ReviewStore. It backs
// itself with a submissionRepoStub so review tests can assert final state
// through the same repository the service reloads from.
type reviewEnv struct {
	submissions   *submissionRepoStub
	donors        []models.Donor
	campuses      map[string]models.Campus
	groups        map[string]models.Group
	nextDonorID   uint
	nextRefID     uint
	campusCreates int
	groupCreates  int
	failContact   string
}

func newReviewEnv(submissions *submissionRepoStub) *reviewEnv {
	return &reviewEnv{
		submissions: submissions,
		campuses:    map[string]models.Campus{},
		groups:      map[string]models.Group{},
		nextDonorID: 1,
		nextRefID:   1,
	}
}

func (e *reviewEnv) Transact(ctx context.Context, fn func(store repository.ReviewStore) error) error {
	return fn(e)
}

func (e *reviewEnv) GetSubmission(ctx context.Context, id uint) (models.DonorListSubmission, error) {
	return e.submissions.GetByID(ctx, id)
}

func (e *reviewEnv) UpdateSubmission(ctx context.Context, submission *models.DonorListSubmission) error {
	return e.submissions.Update(ctx, submission)
}

func (e *reviewEnv) FindDonorByContact(ctx context.Context, contactNumber string) (models.Donor, error) {
	for _, donor := range e.donors {
		if donor.ContactNumber == contactNumber {
			return donor, nil
		}
	}
	return models.Donor{}, gorm.ErrRecordNotFound
}

func (e *reviewEnv) CreateDonor(ctx context.Context, donor *models.Donor) error {
	if e.failContact != "" && donor.ContactNumber == e.failContact {
		return gorm.ErrInvalidData
	}
	donor.ID = e.nextDonorID
	e.nextDonorID++
	e.donors = append(e.donors, *donor)
	return nil
}

func (e *reviewEnv) FindOrCreateCampus(ctx context.Context, name string) (models.Campus, error) {
	if campus, ok := e.campuses[name]; ok {
		return campus, nil
	}
	campus := models.Campus{ID: e.nextRefID, Name: name}
	e.nextRefID++
	e.campusCreates++
	e.campuses[name] = campus
	return campus, nil
}

func (e *reviewEnv) FindOrCreateGroup(ctx context.Context, name string) (models.Group, error) {
	if group, ok := e.groups[name]; ok {
		return group, nil
	}
	group := models.Group{ID: e.nextRefID, Name: name}
	e.nextRefID++
	e.groupCreates++
	e.groups[name] = group
	return group, nil
}

// referenceRepoStub is an in-memory ReferenceRepository.
type referenceRepoStub struct {
	nextID      uint
	entities    map[uint]repository.ReferenceEntity
	donorCounts map[uint]int64
}

func newReferenceRepoStub() *referenceRepoStub {
	return &referenceRepoStub{nextID: 1, entities: map[uint]repository.ReferenceEntity{}, donorCounts: map[uint]int64{}}
}

func (r *referenceRepoStub) List(ctx context.Context) ([]repository.ReferenceEntity, error) {
	var out []repository.ReferenceEntity
	for _, entity := range r.entities {
		entity.DonorCount = r.donorCounts[entity.ID]
		out = append(out, entity)
	}
	return out, nil
}

func (r *referenceRepoStub) GetByID(ctx context.Context, id uint) (repository.ReferenceEntity, error) {
	entity, ok := r.entities[id]
	if !ok {
		return repository.ReferenceEntity{}, gorm.ErrRecordNotFound
	}
	return entity, nil
}

func (r *referenceRepoStub) FindByName(ctx context.Context, name string) (repository.ReferenceEntity, error) {
	for _, entity := range r.entities {
		if entity.Name == name {
			return entity, nil
		}
	}
	return repository.ReferenceEntity{}, gorm.ErrRecordNotFound
}

func (r *referenceRepoStub) FindByNameExcluding(ctx context.Context, name string, excludeID uint) (repository.ReferenceEntity, error) {
	for _, entity := range r.entities {
		if entity.Name == name && entity.ID != excludeID {
			return entity, nil
		}
	}
	return repository.ReferenceEntity{}, gorm.ErrRecordNotFound
}

func (r *referenceRepoStub) FindOrCreate(ctx context.Context, name string) (repository.ReferenceEntity, error) {
	if entity, err := r.FindByName(ctx, name); err == nil {
		return entity, nil
	}
	return r.Create(ctx, name)
}

func (r *referenceRepoStub) Create(ctx context.Context, name string) (repository.ReferenceEntity, error) {
	for _, entity := range r.entities {
		if entity.Name == name {
			return repository.ReferenceEntity{}, gorm.ErrDuplicatedKey
		}
	}
	entity := repository.ReferenceEntity{ID: r.nextID, Name: name}
	r.nextID++
	r.entities[entity.ID] = entity
	return entity, nil
}

func (r *referenceRepoStub) Rename(ctx context.Context, id uint, name string) (repository.ReferenceEntity, error) {
	entity, ok := r.entities[id]
	if !ok {
		return repository.ReferenceEntity{}, gorm.ErrRecordNotFound
	}
	entity.Name = name
	r.entities[id] = entity
	return entity, nil
}

func (r *referenceRepoStub) Delete(ctx context.Context, id uint) error {
	if _, ok := r.entities[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.entities, id)
	return nil
}

func (r *referenceRepoStub) DonorCount(ctx context.Context, id uint) (int64, error) {
	return r.donorCounts[id], nil
}

// donorRepoStub is an in-memory DonorRepository.
type donorRepoStub struct {
	nextID     uint
	donors     []models.Donor
	lastFilter repository.DonorFilter
}

func newDonorRepoStub() *donorRepoStub {
	return &donorRepoStub{nextID: 1}
}

func (r *donorRepoStub) List(ctx context.Context, filter repository.DonorFilter) ([]models.Donor, int64, error) {
	r.lastFilter = filter
	var out []models.Donor
	for _, donor := range r.donors {
		if filter.BloodGroup != nil && donor.BloodGroup != *filter.BloodGroup {
			continue
		}
		if filter.Available != nil && donor.IsAvailable != *filter.Available {
			continue
		}
		if filter.City != nil && *filter.City != "" && !strings.Contains(donor.City, *filter.City) {
			continue
		}
		out = append(out, donor)
	}
	return out, int64(len(out)), nil
}

func (r *donorRepoStub) GetByID(ctx context.Context, id uint) (models.Donor, error) {
	for _, donor := range r.donors {
		if donor.ID == id {
			return donor, nil
		}
	}
	return models.Donor{}, gorm.ErrRecordNotFound
}

func (r *donorRepoStub) FindByContactNumber(ctx context.Context, contactNumber string) (models.Donor, error) {
	for _, donor := range r.donors {
		if donor.ContactNumber == contactNumber {
			return donor, nil
		}
	}
	return models.Donor{}, gorm.ErrRecordNotFound
}

func (r *donorRepoStub) FindByUserID(ctx context.Context, userID uint) (models.Donor, error) {
	for _, donor := range r.donors {
		if donor.UserID != nil && *donor.UserID == userID {
			return donor, nil
		}
	}
	return models.Donor{}, gorm.ErrRecordNotFound
}

func (r *donorRepoStub) Create(ctx context.Context, donor *models.Donor) error {
	donor.ID = r.nextID
	r.nextID++
	r.donors = append(r.donors, *donor)
	return nil
}

func (r *donorRepoStub) Update(ctx context.Context, donor *models.Donor) error {
	for i, existing := range r.donors {
		if existing.ID == donor.ID {
			r.donors[i] = *donor
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *donorRepoStub) CreateBatch(ctx context.Context, donors []models.Donor) (int64, error) {
	var created int64
	for _, donor := range donors {
		if _, err := r.FindByContactNumber(ctx, donor.ContactNumber); err == nil {
			continue
		}
		donor.ID = r.nextID
		r.nextID++
		r.donors = append(r.donors, donor)
		created++
	}
	return created, nil
}
