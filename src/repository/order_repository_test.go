package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	})

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		sqlDB.Close()
		t.Fatalf("failed to open gorm DB with sqlmock: %v", err)
	}

	return gdb, mock
}

func TestOrderRepositoryGetOrderNotFound(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&OrderRepository{}).WithDB(mockDB)

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id =`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	order, err := repo.GetOrder(context.Background(), "0xmissing")
	if err != nil {
		t.Fatalf("not-found must not be an error: %v", err)
	}
	if order != nil {
		t.Fatalf("expected nil order, got %+v", order)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestOrderRepositoryGetOrder(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&OrderRepository{}).WithDB(mockDB)

	createdAt := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "submitter", "token_in", "token_out", "total_amount_in", "min_total_out", "status", "nonce", "created_at"}).
		AddRow("0xabc", "0xd4", "0x11", "0x22", "1000", "500", "pending", 0, createdAt)

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id =`).
		WillReturnRows(rows)

	order, err := repo.GetOrder(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order == nil || order.ID != "0xabc" || order.Status != "pending" {
		t.Fatalf("unexpected order: %+v", order)
	}
	if order.TotalAmountIn.Big().Int64() != 1000 {
		t.Fatalf("amount must survive the string round trip, got %s", order.TotalAmountIn)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestOrderRepositoryCurrentNonce(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&OrderRepository{}).WithDB(mockDB)

	t.Run("unseen submitter", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "submitter_nonces" WHERE submitter =`).
			WillReturnRows(sqlmock.NewRows([]string{"submitter", "nonce"}))

		nonce, err := repo.CurrentNonce(context.Background(), "0xnew")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if nonce != 0 {
			t.Fatalf("expected nonce 0, got %d", nonce)
		}
	})

	t.Run("known submitter", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "submitter_nonces" WHERE submitter =`).
			WillReturnRows(sqlmock.NewRows([]string{"submitter", "nonce"}).AddRow("0xd4", 7))

		nonce, err := repo.CurrentNonce(context.Background(), "0xd4")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if nonce != 7 {
			t.Fatalf("expected nonce 7, got %d", nonce)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestOrderRepositoryCountOrders(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&OrderRepository{}).WithDB(mockDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.CountOrders(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 42 {
		t.Fatalf("expected 42 orders, got %d", count)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestOrderRepositoryGetResultNotFound(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&OrderRepository{}).WithDB(mockDB)

	mock.ExpectQuery(`SELECT \* FROM "execution_results" WHERE order_id =`).
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}))

	result, err := repo.GetResult(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("not-found must not be an error: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result, got %+v", result)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestVenueRepositoryGetVenueNotFound(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&VenueRepository{}).WithDB(mockDB)

	mock.ExpectQuery(`SELECT \* FROM "venues" WHERE id =`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	venue, err := repo.GetVenue(context.Background(), "missing")
	if err != nil {
		t.Fatalf("not-found must not be an error: %v", err)
	}
	if venue != nil {
		t.Fatalf("expected nil venue, got %+v", venue)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestVenueRepositoryListVenuesOrdering(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&VenueRepository{}).WithDB(mockDB)

	rows := sqlmock.NewRows([]string{"id", "seq", "router", "is_active", "is_healthy"}).
		AddRow("uni-v2", 1, "0x01", true, true).
		AddRow("sushi", 2, "0x02", true, false)

	mock.ExpectQuery(`SELECT \* FROM "venues" ORDER BY seq ASC`).
		WillReturnRows(rows)

	venues, err := repo.ListVenues(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(venues) != 2 || venues[0].ID != "uni-v2" || venues[1].ID != "sushi" {
		t.Fatalf("unexpected venues: %+v", venues)
	}
	if venues[1].IsHealthy {
		t.Fatalf("expected sushi to be unhealthy")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}
