package repositories

import (
	"context"
	"testing"

	"pickupcore/internal/domain"
	"pickupcore/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func TestOverrideUpsert_RepeatedWriteHitsSameKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	capacity := 8
	ov := models.DayOverride{Date: "2025-03-10", SessionID: "morning", CustomCapacity: &capacity}
	for i := 0; i < 2; i++ {
		mock.ExpectExec("INSERT INTO day_overrides .* ON DUPLICATE KEY UPDATE").
			WithArgs("2025-03-10", "morning", false, 8, nil).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}

	repo := OverrideRepository{DB: db}
	for i := 0; i < 2; i++ {
		if err := repo.Upsert(context.Background(), ov); err != nil {
			t.Fatalf("upsert %d error: %v", i, err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOverrideClose_KeepsCustomCapacity(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	reason := "storm"
	mock.ExpectExec(`ON DUPLICATE KEY UPDATE\s+is_closed = 1,\s+closure_reason = VALUES\(closure_reason\)\s*$`).
		WithArgs("2025-03-10", "evening", "storm").
		WillReturnResult(sqlmock.NewResult(1, 2))

	if err := (OverrideRepository{DB: db}).Close(context.Background(), "2025-03-10", "evening", &reason); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOverrideListRange_MapsNullables(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM day_overrides").
		WithArgs("2025-03-01", "2025-03-31").
		WillReturnRows(sqlmock.NewRows([]string{"d", "session_id", "is_closed", "custom_capacity", "closure_reason"}).
			AddRow("2025-03-10", "morning", true, nil, "holiday").
			AddRow("2025-03-11", "evening", false, 6, nil))

	got, err := OverrideRepository{DB: db}.ListRange(context.Background(), "2025-03-01", "2025-03-31")
	if err != nil {
		t.Fatalf("ListRange error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 overrides, got %d", len(got))
	}
	if !got[0].IsClosed || got[0].CustomCapacity != nil || got[0].ClosureReason == nil || *got[0].ClosureReason != "holiday" {
		t.Fatalf("unexpected first override: %+v", got[0])
	}
	if got[1].IsClosed || got[1].CustomCapacity == nil || *got[1].CustomCapacity != 6 || got[1].ClosureReason != nil {
		t.Fatalf("unexpected second override: %+v", got[1])
	}
}

func TestZoneList_DecodesPolygon(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM pickup_zones").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "color", "priority", "polygon", "ms", "me", "es", "ee"}).
			AddRow("old-town", "Old Town", "#ff0000", 1, []byte(`[[115.1,-8.7],[115.3,-8.7],[115.3,-8.6]]`), "08:00", "08:30", "16:00", "16:30"))

	zones, err := ZoneRepository{DB: db}.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(zones) != 1 || len(zones[0].Polygon) != 3 || zones[0].Polygon[1][0] != 115.3 {
		t.Fatalf("unexpected zones: %+v", zones)
	}
}

func TestStaffInsert_DuplicateUsernameIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO staff_accounts").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'ops'"})

	_, err = StaffRepository{DB: db}.Insert(context.Background(), models.StaffAccount{Username: "ops", PasswordHash: "x", Role: "admin"})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
