package postgres

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mktbedugroup/ditalentweb-sub001/internal/domain"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/service/popup"
)

var popupTestColumns = []string{
	"id", "name", "is_active", "priority", "content", "appearance",
	"trigger_type", "trigger_value", "frequency_type", "frequency_value",
	"targeting", "impressions", "clicks", "created_at", "updated_at",
}

func popupRow(id, name string) []driverValue {
	now := time.Now()
	return []driverValue{
		id, name, true, 10,
		[]byte(`{"title":{"es":"Oferta"},"text":{"es":"Texto"}}`),
		[]byte(`{"size":"medium","position":"center","overlay_opacity":0.5}`),
		"delay", 5.0, "session", 0,
		[]byte(`{"pages":["/"],"devices":["desktop"],"users":["guest"]}`),
		int64(3), int64(1), now, now,
	}
}

type driverValue = driver.Value

func TestListActive_ScansRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(popupTestColumns).
		AddRow(popupRow("pop-1", "first")...).
		AddRow(popupRow("pop-2", "second")...)

	mock.ExpectQuery("FROM popups").
		WillReturnRows(rows)

	repo := NewPopupRepo(db)
	got, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "pop-1", got[0].ID)
	assert.Equal(t, domain.TriggerDelay, got[0].Trigger.Type)
	assert.Equal(t, 5.0, got[0].Trigger.Value)
	assert.Equal(t, domain.FrequencySession, got[0].Frequency.Type)
	assert.Equal(t, "Oferta", got[0].Content.Title.ES)
	assert.Equal(t, []string{"/"}, got[0].Targeting.Pages)
	assert.Equal(t, []domain.Device{domain.DeviceDesktop}, got[0].Targeting.Devices)
	assert.Equal(t, int64(3), got[0].Impressions)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM popups").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(popupTestColumns))

	repo := NewPopupRepo(db)
	_, err = repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, popup.ErrNotFound)
}

func TestCreate_AssignsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO popups").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPopupRepo(db)
	p := &domain.Popup{
		Name:      "new",
		IsActive:  true,
		Trigger:   domain.Trigger{Type: domain.TriggerScroll, Value: 50},
		Frequency: domain.Frequency{Type: domain.FrequencyDays, Value: 2},
	}
	require.NoError(t, repo.Create(context.Background(), p))
	assert.NotEmpty(t, p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE popups").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPopupRepo(db)
	p := &domain.Popup{
		ID:        "missing",
		Trigger:   domain.Trigger{Type: domain.TriggerDelay, Value: 1},
		Frequency: domain.Frequency{Type: domain.FrequencyAlways},
	}
	assert.ErrorIs(t, repo.Update(context.Background(), p), popup.ErrNotFound)
}

func TestDelete_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM popups").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPopupRepo(db)
	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), popup.ErrNotFound)
}

func TestIncrementImpressions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE popups SET impressions = impressions \\+ 1").
		WithArgs("pop-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPopupRepo(db)
	assert.NoError(t, repo.IncrementImpressions(context.Background(), "pop-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
