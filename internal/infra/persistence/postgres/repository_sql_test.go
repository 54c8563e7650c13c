package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"safeguard/internal/domain/entity"
	"safeguard/internal/domain/repository"
	"safeguard/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type capturedStatement struct {
	sql  string
	vars []any
}

type statementRecorder struct {
	mu    sync.Mutex
	stmts []capturedStatement
}

func (r *statementRecorder) capture(db *gorm.DB) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stmts = append(r.stmts, capturedStatement{
		sql:  db.Statement.SQL.String(),
		vars: append([]any(nil), db.Statement.Vars...),
	})
}

func (r *statementRecorder) last(t *testing.T) capturedStatement {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.stmts, "no statement was built")

	return r.stmts[len(r.stmts)-1]
}

// dryRunDB renders postgres SQL without a server; every statement reports zero rows.
func dryRunDB(t *testing.T) (*gorm.DB, *statementRecorder) {
	t.Helper()

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=safeguard dbname=safeguard sslmode=disable",
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	rec := &statementRecorder{}
	cb := db.Callback()
	require.NoError(t, cb.Query().After("gorm:query").Register("test:capture_query", rec.capture))
	require.NoError(t, cb.Create().After("gorm:create").Register("test:capture_create", rec.capture))
	require.NoError(t, cb.Update().After("gorm:update").Register("test:capture_update", rec.capture))
	require.NoError(t, cb.Delete().After("gorm:delete").Register("test:capture_delete", rec.capture))

	return db, rec
}

func TestUpsertLiveLocation_KeepsExplicitFalse(t *testing.T) {
	db, _ := dryRunDB(t)

	m := &model.LiveLocationModel{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Name:        "Ana",
		Latitude:    40.7,
		Longitude:   -74,
		IsSharing:   false,
		ShareWith:   pq.StringArray{},
		LastUpdated: time.Now().UTC(),
	}
	stmt := upsertLiveLocation(db, m).Statement

	sql := stmt.SQL.String()
	assert.Contains(t, sql, `INSERT INTO "live_locations"`)
	assert.Contains(t, sql, `ON CONFLICT ("user_id") DO UPDATE SET`)
	assert.Contains(t, sql, `"is_sharing"="excluded"."is_sharing"`)
	assert.NotContains(t, sql, `"created_at"="excluded"`, "created_at survives an overwrite")
	assert.Contains(t, stmt.Vars, false, "is_sharing=false is written as false")
	assert.NotContains(t, stmt.Vars, true)
	assert.False(t, m.IsSharing)
}

func TestVisibleLiveLocations_FanOutQuery(t *testing.T) {
	db, _ := dryRunDB(t)

	viewer := uuid.New()
	since := time.Now().Add(-30 * time.Minute)

	var models []model.LiveLocationModel
	stmt := visibleLiveLocations(db, repository.VisibleQuery{ViewerID: viewer, Since: since}).Find(&models).Statement

	sql := stmt.SQL.String()
	assert.Contains(t, sql, `FROM "live_locations"`)
	assert.Contains(t, sql, "is_sharing = $1")
	assert.Contains(t, sql, "last_updated >= $2")
	assert.Contains(t, sql, "$3 = ANY(share_with)")
	assert.Contains(t, sql, "ORDER BY last_updated DESC")
	assert.NotContains(t, sql, "OR user_id")
	require.Len(t, stmt.Vars, 3)
	assert.Equal(t, true, stmt.Vars[0])
	assert.Equal(t, since, stmt.Vars[1])
	assert.Equal(t, viewer.String(), stmt.Vars[2], "share_with holds text ids")

	models = nil
	stmt = visibleLiveLocations(db, repository.VisibleQuery{ViewerID: viewer, Since: since, IncludeOwn: true}).Find(&models).Statement
	assert.Contains(t, stmt.SQL.String(), "$3 = ANY(share_with) OR user_id = $4")
	assert.Equal(t, viewer, stmt.Vars[3])
}

func TestLiveLocationRepository_StopSharingScopedToUser(t *testing.T) {
	db, rec := dryRunDB(t)
	repo := NewLiveLocationRepository(db)

	userID := uuid.New()
	err := repo.StopSharing(context.Background(), userID, time.Now())
	assert.ErrorIs(t, err, repository.ErrLiveLocationNotFound, "no matching row reports not found")

	stmt := rec.last(t)
	assert.Contains(t, stmt.sql, `UPDATE "live_locations" SET`)
	assert.Contains(t, stmt.sql, "WHERE user_id = ")
	assert.Contains(t, stmt.vars, false)
	assert.Contains(t, stmt.vars, userID)
}

func TestLiveLocationRepository_FindByUserIDQuery(t *testing.T) {
	db, rec := dryRunDB(t)
	repo := NewLiveLocationRepository(db)

	userID := uuid.New()
	_, _ = repo.FindByUserID(context.Background(), userID)

	stmt := rec.last(t)
	assert.Contains(t, stmt.sql, "WHERE user_id = $1")
	assert.Equal(t, userID, stmt.vars[0])
}

func TestTrackedLocationRepository_OwnerScoping(t *testing.T) {
	db, rec := dryRunDB(t)
	repo := NewTrackedLocationRepository(db)
	ctx := context.Background()
	owner := uuid.New()

	_, err := repo.ListByOwner(ctx, owner, repository.TrackedLocationFilter{Type: entity.TrackedLocationPerson})
	require.NoError(t, err)
	stmt := rec.last(t)
	assert.Contains(t, stmt.sql, "WHERE user_id = $1 AND type = $2")
	assert.Contains(t, stmt.sql, "ORDER BY created_at DESC,id DESC")
	assert.Equal(t, []any{owner, "person"}, stmt.vars)

	err = repo.Delete(ctx, owner, 42)
	assert.ErrorIs(t, err, repository.ErrTrackedLocationNotFound)
	stmt = rec.last(t)
	assert.Contains(t, stmt.sql, `DELETE FROM "tracked_locations" WHERE id = $1 AND user_id = $2`)
	assert.Equal(t, []any{int64(42), owner}, stmt.vars)
}

func TestContactRepository_OwnerScoping(t *testing.T) {
	db, rec := dryRunDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()
	owner := uuid.New()
	contactID := uuid.New()

	_, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	stmt := rec.last(t)
	assert.Contains(t, stmt.sql, `FROM "contacts" WHERE user_id = $1 ORDER BY created_at DESC`)

	_, _ = repo.FindByID(ctx, owner, contactID)
	stmt = rec.last(t)
	assert.Contains(t, stmt.sql, "WHERE id = $1 AND user_id = $2")
	assert.Equal(t, contactID, stmt.vars[0])
	assert.Equal(t, owner, stmt.vars[1])

	err = repo.Update(ctx, &entity.Contact{ID: contactID, UserID: owner, Name: "Mom", Status: entity.ContactStatusSafe})
	assert.ErrorIs(t, err, repository.ErrContactNotFound)
	stmt = rec.last(t)
	assert.Contains(t, stmt.sql, `UPDATE "contacts" SET`)
	assert.Contains(t, stmt.sql, "WHERE id = ")
	assert.Contains(t, stmt.sql, "AND user_id = ")
	assert.NotContains(t, stmt.sql, `"user_id"=`, "ownership is never rewritten")

	err = repo.Delete(ctx, owner, contactID)
	assert.ErrorIs(t, err, repository.ErrContactNotFound)
	stmt = rec.last(t)
	assert.Contains(t, stmt.sql, `DELETE FROM "contacts" WHERE id = $1 AND user_id = $2`)
}
