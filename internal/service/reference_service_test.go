package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bloodlagbe/bloodlagbe-api/internal/dto"
	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
	"github.com/bloodlagbe/bloodlagbe-api/internal/repository"
)

type cacheInvalidatorStub struct {
	calls int
}

func (c *cacheInvalidatorStub) InvalidateFilterCache(ctx context.Context) {
	c.calls++
}

func newReferenceFixture() (*referenceRepoStub, *cacheInvalidatorStub, ReferenceService) {
	repo := newReferenceRepoStub()
	cache := &cacheInvalidatorStub{}
	svc := NewReferenceService("campus", repo, &activityStub{}, cache, testValidator(), testLogger())
	return repo, cache, svc
}

func adminActor() Actor {
	return Actor{ID: 1, Role: models.RoleAdmin}
}

func TestReferenceCreateRejectsDuplicateNames(t *testing.T) {
	_, cache, svc := newReferenceFixture()

	created, err := svc.Create(context.Background(), adminActor(), dto.ReferenceCreateRequest{Name: "  BUET  "})
	require.NoError(t, err)
	require.Equal(t, "BUET", created.Name)
	require.Equal(t, 1, cache.calls)

	_, err = svc.Create(context.Background(), adminActor(), dto.ReferenceCreateRequest{Name: "BUET"})
	require.ErrorIs(t, err, ErrReferenceNameTaken)
}

func TestReferenceRenameChecksConflicts(t *testing.T) {
	repo, _, svc := newReferenceFixture()
	repo.entities[1] = repository.ReferenceEntity{ID: 1, Name: "BUET"}
	repo.entities[2] = repository.ReferenceEntity{ID: 2, Name: "DU"}
	repo.nextID = 3

	renamed, err := svc.Rename(context.Background(), adminActor(), 1, dto.ReferenceUpdateRequest{Name: "BUET Campus"})
	require.NoError(t, err)
	require.Equal(t, "BUET Campus", renamed.Name)

	_, err = svc.Rename(context.Background(), adminActor(), 1, dto.ReferenceUpdateRequest{Name: "DU"})
	require.ErrorIs(t, err, ErrReferenceNameTaken)

	_, err = svc.Rename(context.Background(), adminActor(), 99, dto.ReferenceUpdateRequest{Name: "Nowhere"})
	require.ErrorIs(t, err, ErrReferenceNotFound)
}

func TestReferenceDeleteRefusedWhileInUse(t *testing.T) {
	repo, cache, svc := newReferenceFixture()
	repo.entities[1] = repository.ReferenceEntity{ID: 1, Name: "BUET"}
	repo.donorCounts[1] = 3
	repo.nextID = 2

	err := svc.Delete(context.Background(), adminActor(), 1)
	require.ErrorIs(t, err, ErrReferenceInUse)

	repo.donorCounts[1] = 0
	require.NoError(t, svc.Delete(context.Background(), adminActor(), 1))
	require.Equal(t, 1, cache.calls)

	err = svc.Delete(context.Background(), adminActor(), 1)
	require.ErrorIs(t, err, ErrReferenceNotFound)
}
