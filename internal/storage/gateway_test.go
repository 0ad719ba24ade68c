package storage

import (
	"context"
	"errors"
	"testing"

	apperrors "founders-circle/internal/common/errors"
	"founders-circle/internal/common/logger"
	"founders-circle/internal/common/metrics"
	"founders-circle/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Tier Selection
// ==========================

func TestSelect_PrefersFirstAvailableTier(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var opened []Tier
	candidates := []Candidate{
		{Tier: TierPrivileged, Open: func(context.Context) (Provider, error) {
			opened = append(opened, TierPrivileged)
			return nil, errors.New("no service role configured")
		}},
		{Tier: TierRestricted, Open: func(context.Context) (Provider, error) {
			opened = append(opened, TierRestricted)
			return NewPostgresStore(db, TierRestricted), nil
		}},
		{Tier: TierFile, Open: func(context.Context) (Provider, error) {
			opened = append(opened, TierFile)
			return NewFileStore(t.TempDir())
		}},
	}

	gw, err := Select(context.Background(), logger.NewTestLogger(t), candidates...)
	require.NoError(t, err)
	assert.Equal(t, TierRestricted, gw.Tier())
	assert.False(t, gw.Privileged())
	assert.True(t, gw.Database())
	assert.Equal(t, []Tier{TierPrivileged, TierRestricted}, opened)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StorageTier.WithLabelValues(string(TierRestricted))))
}

func TestSelect_FallsBackToFile(t *testing.T) {
	fail := func(context.Context) (Provider, error) { return nil, errors.New("unreachable") }
	gw, err := Select(context.Background(), logger.NewNoOpLogger(),
		Candidate{Tier: TierPrivileged, Open: fail},
		Candidate{Tier: TierRestricted, Open: fail},
		Candidate{Tier: TierFile, Open: func(context.Context) (Provider, error) { return NewFileStore(t.TempDir()) }},
	)
	require.NoError(t, err)
	assert.Equal(t, TierFile, gw.Tier())
	assert.False(t, gw.Database())

	_, ok := gw.Templates()
	assert.False(t, ok)
	_, ok = gw.Catalog()
	assert.False(t, ok)
}

func TestSelect_NothingAvailable(t *testing.T) {
	_, err := Select(context.Background(), logger.NewNoOpLogger(),
		Candidate{Tier: TierPrivileged, Open: func(context.Context) (Provider, error) { return nil, errors.New("down") }},
		Candidate{Tier: TierRestricted},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "privileged: down")
}

// ==========================
// Instrumentation
// ==========================

type brokenProvider struct{ *FileStore }

func (brokenProvider) ListApplications(context.Context) ([]models.Application, error) {
	return nil, errors.New("disk on fire")
}

func TestGateway_NormalizesErrors(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	gw := NewGateway(brokenProvider{fs}, logger.NewNoOpLogger())

	before := testutil.ToFloat64(metrics.StorageOperations.WithLabelValues("file", "list_applications", "error"))
	_, err = gw.ListApplications(context.Background())
	assert.True(t, apperrors.IsStorage(err))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.StorageOperations.WithLabelValues("file", "list_applications", "error")))

	_, _, err = gw.UpdateApplicationStatus(context.Background(), "nope", models.StatusApproved)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGateway_ExposesDatabaseCapabilities(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	gw := NewGateway(NewPostgresStore(db, TierPrivileged), logger.NewNoOpLogger())
	assert.True(t, gw.Privileged())

	templates, ok := gw.Templates()
	require.True(t, ok)
	mock.ExpectQuery(`FROM email_templates`).WillReturnError(errors.New("timeout"))
	_, err = templates.ListTemplates(context.Background())
	assert.True(t, apperrors.IsStorage(err))

	_, ok = gw.Catalog()
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
