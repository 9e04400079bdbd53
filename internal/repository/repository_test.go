package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowmilk/guildforms/internal/db"
	"github.com/shadowmilk/guildforms/internal/models"
)

// newTestDB открывает базу в памяти с полной схемой.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := db.NewSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.CreateSchema(context.Background(), conn))
	return conn
}

func TestTemplateRepository_CreateAndList(t *testing.T) {
	repo := NewTemplateRepository(newTestDB(t))
	ctx := context.Background()

	template := &models.Template{
		GuildID:   "42",
		Name:      "Staff App",
		Questions: []string{"Why join?", "Age?"},
	}
	require.NoError(t, repo.Create(ctx, template))
	assert.NotZero(t, template.ID)
	assert.False(t, template.CreatedAt.IsZero())

	templates, err := repo.ListByGuild(ctx, "42")
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "Staff App", templates[0].Name)
	assert.Equal(t, []string{"Why join?", "Age?"}, templates[0].Questions)

	// Чужая гильдия ничего не видит.
	other, err := repo.ListByGuild(ctx, "999")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestTemplateRepository_MonotonicIDs(t *testing.T) {
	repo := NewTemplateRepository(newTestDB(t))
	ctx := context.Background()

	var lastID int64
	for i := 0; i < 5; i++ {
		template := &models.Template{GuildID: "g", Name: "t", Questions: []string{}}
		require.NoError(t, repo.Create(ctx, template))
		assert.Greater(t, template.ID, lastID)
		lastID = template.ID
	}
}

func TestTemplateRepository_GetByID_Miss(t *testing.T) {
	repo := NewTemplateRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 12345, "42")
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	// Совпадение id без совпадения guild_id — тоже промах.
	template := &models.Template{GuildID: "42", Name: "t", Questions: []string{"q"}}
	require.NoError(t, repo.Create(ctx, template))

	_, err = repo.GetByID(ctx, template.ID, "other-guild")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestTemplateRepository_ZeroQuestions(t *testing.T) {
	repo := NewTemplateRepository(newTestDB(t))
	ctx := context.Background()

	template := &models.Template{GuildID: "42", Name: ""}
	require.NoError(t, repo.Create(ctx, template))

	got, err := repo.GetByID(ctx, template.ID, "42")
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.Questions)
	assert.Empty(t, got.Name)
}

func TestSubmissionRepository_CreateForcesPendingAndTimestamp(t *testing.T) {
	repo := NewSubmissionRepository(newTestDB(t))
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	submission := &models.Submission{
		GuildID: "42",
		UserID:  "user-1",
		Answers: map[string]string{"q1": "a1", "user_id": "spoofed"},
		// Попытка навязать статус и время игнорируется сервером.
		Status:    models.SubmissionStatusAccepted,
		Timestamp: time.Unix(0, 0),
	}
	require.NoError(t, repo.Create(ctx, submission))

	assert.Equal(t, models.SubmissionStatusPending, submission.Status)
	assert.True(t, submission.Timestamp.After(before))

	submissions, err := repo.ListByGuild(ctx, "42")
	require.NoError(t, err)
	require.Len(t, submissions, 1)
	assert.Equal(t, models.SubmissionStatusPending, submissions[0].Status)
	assert.Equal(t, "a1", submissions[0].Answers["q1"])
}

func TestSubmissionRepository_ArbitraryBodyShape(t *testing.T) {
	repo := NewSubmissionRepository(newTestDB(t))
	ctx := context.Background()

	// Пустые ответы и ответы, не сверенные с анкетой, принимаются одинаково.
	require.NoError(t, repo.Create(ctx, &models.Submission{GuildID: "g"}))
	require.NoError(t, repo.Create(ctx, &models.Submission{
		GuildID: "g",
		Answers: map[string]string{"unexpected_field": "value"},
	}))

	submissions, err := repo.ListByGuild(ctx, "g")
	require.NoError(t, err)
	assert.Len(t, submissions, 2)
}

func TestSettingsRepository_GetMiss(t *testing.T) {
	repo := NewSettingsRepository(newTestDB(t))

	_, err := repo.Get(context.Background(), "42")
	assert.ErrorIs(t, err, ErrSettingsNotFound)
}

func TestSettingsRepository_UpsertIdempotent(t *testing.T) {
	conn := newTestDB(t)
	repo := NewSettingsRepository(conn)
	ctx := context.Background()

	dt := int64(7)
	settings := &models.GuildSettings{GuildID: "42", AutoDM: true, DefaultTemplate: &dt}
	require.NoError(t, repo.Upsert(ctx, settings))
	require.NoError(t, repo.Upsert(ctx, settings))

	var count int
	require.NoError(t, conn.Get(&count, `SELECT COUNT(*) FROM guild_settings WHERE guild_id = '42'`))
	assert.Equal(t, 1, count)

	got, err := repo.Get(ctx, "42")
	require.NoError(t, err)
	assert.True(t, got.AutoDM)
	require.NotNil(t, got.DefaultTemplate)
	assert.Equal(t, int64(7), *got.DefaultTemplate)
}

func TestSettingsRepository_LastWriteWinsWholeRow(t *testing.T) {
	repo := NewSettingsRepository(newTestDB(t))
	ctx := context.Background()

	dt := int64(1)
	first := &models.GuildSettings{GuildID: "42", AutoDM: true, DefaultTemplate: &dt}
	second := &models.GuildSettings{GuildID: "42", AutoDM: false, DefaultTemplate: nil}

	var wg sync.WaitGroup
	for _, s := range []*models.GuildSettings{first, second} {
		wg.Add(1)
		go func(s *models.GuildSettings) {
			defer wg.Done()
			assert.NoError(t, repo.Upsert(ctx, s))
		}(s)
	}
	wg.Wait()

	got, err := repo.Get(ctx, "42")
	require.NoError(t, err)

	// Итог — строка целиком от одного из двух писателей, не смесь полей.
	matchesFirst := got.AutoDM && got.DefaultTemplate != nil && *got.DefaultTemplate == 1
	matchesSecond := !got.AutoDM && got.DefaultTemplate == nil
	assert.True(t, matchesFirst || matchesSecond)
}

func TestGuildRepository_SyncAndRoles(t *testing.T) {
	repo := NewGuildRepository(newTestDB(t))
	ctx := context.Background()

	guilds := []models.Guild{
		{ID: "g1", Name: "Alpha"},
		{ID: "g2", Name: "Beta"},
	}
	roles := map[string]string{
		"g1": models.MembershipRoleAdmin,
		"g2": models.MembershipRoleMember,
	}
	require.NoError(t, repo.SyncMemberships(ctx, "user-1", guilds, roles))

	role, err := repo.GetRole(ctx, "g1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.MembershipRoleAdmin, role)

	_, err = repo.GetRole(ctx, "g3", "user-1")
	assert.ErrorIs(t, err, ErrMembershipNotFound)

	admin, err := repo.ListByUser(ctx, "user-1", models.MembershipRoleAdmin)
	require.NoError(t, err)
	require.Len(t, admin, 1)
	assert.Equal(t, "g1", admin[0].ID)

	// Повторная синхронизация заменяет членства, а не дополняет их.
	require.NoError(t, repo.SyncMemberships(ctx, "user-1", []models.Guild{{ID: "g2", Name: "Beta"}}, map[string]string{"g2": models.MembershipRoleAdmin}))

	_, err = repo.GetRole(ctx, "g1", "user-1")
	assert.ErrorIs(t, err, ErrMembershipNotFound)

	role, err = repo.GetRole(ctx, "g2", "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.MembershipRoleAdmin, role)
}
