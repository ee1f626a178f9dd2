package unit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
)

type fakeUnitRepo struct {
	units      map[id.ID]*Unit
	referenced map[id.ID]bool

	// findErr, when set, is returned by FindByAbbreviation in place of a
	// lookup, simulating a storage failure.
	findErr error
}

func newFakeUnitRepo() *fakeUnitRepo {
	return &fakeUnitRepo{
		units:      make(map[id.ID]*Unit),
		referenced: make(map[id.ID]bool),
	}
}

func (f *fakeUnitRepo) Create(ctx context.Context, u *Unit) error {
	cp := *u
	f.units[u.ID] = &cp
	return nil
}

func (f *fakeUnitRepo) Update(ctx context.Context, u *Unit) error {
	cp := *u
	f.units[u.ID] = &cp
	return nil
}

func (f *fakeUnitRepo) Delete(ctx context.Context, unitID id.ID) error {
	delete(f.units, unitID)
	return nil
}

func (f *fakeUnitRepo) GetByID(ctx context.Context, unitID id.ID) (*Unit, error) {
	u, ok := f.units[unitID]
	if !ok {
		return nil, apperror.NewNotFound("unit", unitID)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUnitRepo) FindByAbbreviation(ctx context.Context, abbreviation string) (*Unit, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.units {
		if u.Abbreviation == abbreviation {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("unit", abbreviation)
}

func (f *fakeUnitRepo) List(ctx context.Context) ([]Unit, error) {
	out := make([]Unit, 0, len(f.units))
	for _, u := range f.units {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUnitRepo) IsReferenced(ctx context.Context, unitID id.ID) (bool, error) {
	return f.referenced[unitID], nil
}

func TestCreate(t *testing.T) {
	repo := newFakeUnitRepo()
	svc := NewService(repo)
	ctx := context.Background()

	t.Run("fresh abbreviation", func(t *testing.T) {
		require.NoError(t, svc.Create(ctx, New("bouteille", "btl")))
	})

	t.Run("duplicate abbreviation rejected", func(t *testing.T) {
		err := svc.Create(ctx, New("bouteille 65cl", "btl"))
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
	})

	t.Run("lookup failure propagates instead of skipping the guard", func(t *testing.T) {
		repo.findErr = errors.New("connection reset")
		defer func() { repo.findErr = nil }()

		before := len(repo.units)
		err := svc.Create(ctx, New("casier", "csr"))
		require.Error(t, err)
		assert.False(t, apperror.IsNotFound(err))
		assert.Len(t, repo.units, before)
	})
}

func TestUpdate_ReferencedUnitImmutable(t *testing.T) {
	repo := newFakeUnitRepo()
	svc := NewService(repo)
	ctx := context.Background()

	u := New("casier", "csr")
	require.NoError(t, svc.Create(ctx, u))
	repo.referenced[u.ID] = true

	u.Name = "casier 12"
	err := svc.Update(ctx, u)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}

func TestDelete_ReferencedUnitRejected(t *testing.T) {
	repo := newFakeUnitRepo()
	svc := NewService(repo)
	ctx := context.Background()

	u := New("litre", "l")
	require.NoError(t, svc.Create(ctx, u))
	repo.referenced[u.ID] = true

	err := svc.Delete(ctx, u.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
	assert.Contains(t, repo.units, u.ID)

	repo.referenced[u.ID] = false
	require.NoError(t, svc.Delete(ctx, u.ID))
}
