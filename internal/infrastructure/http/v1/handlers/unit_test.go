package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
	"negoce/internal/domain/catalog/unit"
	"negoce/internal/infrastructure/storage/postgres"
)

type memUnitRepo struct {
	units map[id.ID]*unit.Unit
}

func newMemUnitRepo() *memUnitRepo {
	return &memUnitRepo{units: make(map[id.ID]*unit.Unit)}
}

func (m *memUnitRepo) Create(ctx context.Context, u *unit.Unit) error {
	cp := *u
	m.units[u.ID] = &cp
	return nil
}

func (m *memUnitRepo) Update(ctx context.Context, u *unit.Unit) error {
	cp := *u
	m.units[u.ID] = &cp
	return nil
}

func (m *memUnitRepo) Delete(ctx context.Context, unitID id.ID) error {
	delete(m.units, unitID)
	return nil
}

func (m *memUnitRepo) GetByID(ctx context.Context, unitID id.ID) (*unit.Unit, error) {
	u, ok := m.units[unitID]
	if !ok {
		return nil, apperror.NewNotFound("unit", unitID)
	}
	cp := *u
	return &cp, nil
}

func (m *memUnitRepo) FindByAbbreviation(ctx context.Context, abbreviation string) (*unit.Unit, error) {
	for _, u := range m.units {
		if u.Abbreviation == abbreviation {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("unit", abbreviation)
}

func (m *memUnitRepo) List(ctx context.Context) ([]unit.Unit, error) {
	out := make([]unit.Unit, 0, len(m.units))
	for _, u := range m.units {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memUnitRepo) IsReferenced(ctx context.Context, unitID id.ID) (bool, error) {
	return false, nil
}

// failingAudit simulates an unavailable audit store.
type failingAudit struct{}

func (failingAudit) Record(ctx context.Context, entityType string, entityID id.ID, action postgres.AuditAction, changed any) error {
	return errors.New("audit store unavailable")
}

func newUnitTestRouter(audit AuditRecorder, repo *memUnitRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := NewUnitHandler(NewBaseHandler(), unit.NewService(repo), audit)
	h.RegisterRoutes(router.Group("/units"))
	return router
}

func TestUnitCreate_AuditFailureDoesNotFailRequest(t *testing.T) {
	repo := newMemUnitRepo()
	router := newUnitTestRouter(failingAudit{}, repo)

	body := `{"name":"casier","abbreviation":"csr"}`
	req := httptest.NewRequest(http.MethodPost, "/units", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, repo.units, 1)
}

func TestUnitDelete_AuditFailureDoesNotFailRequest(t *testing.T) {
	repo := newMemUnitRepo()
	router := newUnitTestRouter(failingAudit{}, repo)

	u := unit.New("litre", "l")
	require.NoError(t, repo.Create(context.Background(), u))

	req := httptest.NewRequest(http.MethodDelete, "/units/"+u.ID.String(), nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, repo.units)
}
