package main

import (
	"bytes"
	"context"
	"strconv"
	"testing"

	"resirent/internal/database"
	"resirent/internal/domain"
	"resirent/internal/modules/admin"
	"resirent/internal/pkg/logger"
	"resirent/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*admin.Service, int64) {
	t.Helper()
	log := logger.Discard()
	db, err := database.Connect(":memory:", log)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	users := repository.NewUserRepository(db)
	u := &domain.User{
		Email: "owner@example.com", Username: "owner", PasswordHash: "x",
		FirstName: "Ana", LastName: "Silva", PhoneNumber: "+351900000000",
	}
	require.NoError(t, users.CreateOwner(context.Background(), u, &domain.OwnerProfile{
		Address: "Rua 1", PhoneNumber: "+351900000000",
		ResidencesToPublish: 1, AccountStatus: domain.StatusPending,
	}))
	return admin.NewService(users, log), u.ID
}

func TestRun_ApproveSuspendAndQuota(t *testing.T) {
	svc, id := setup(t)
	ctx := context.Background()
	idArg := int64String(id)

	var out bytes.Buffer
	require.NoError(t, run(ctx, svc, []string{"approve", idArg}, &out))
	assert.Contains(t, out.String(), "status=active")

	out.Reset()
	require.NoError(t, run(ctx, svc, []string{"set-quota", idArg, "5"}, &out))
	assert.Contains(t, out.String(), "residences_to_publish=5")

	out.Reset()
	require.NoError(t, run(ctx, svc, []string{"suspend", idArg}, &out))
	assert.Contains(t, out.String(), "status=suspended")

	out.Reset()
	require.NoError(t, run(ctx, svc, []string{"set-status", idArg, "active"}, &out))
	assert.Contains(t, out.String(), "status=active")

	err := run(ctx, svc, []string{"set-status", idArg, "pending"}, &out)
	assert.ErrorIs(t, err, admin.ErrInvalidTransition)
}

func TestRun_ListOwners(t *testing.T) {
	svc, id := setup(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, run(ctx, svc, []string{"list-owners"}, &out))
	assert.Contains(t, out.String(), "owner@example.com")
	assert.Contains(t, out.String(), "Ana Silva")
	assert.Contains(t, out.String(), "pending")

	out.Reset()
	require.NoError(t, run(ctx, svc, []string{"list-owners", "-status", "active"}, &out))
	assert.NotContains(t, out.String(), "owner@example.com")

	_, err := svc.ApproveOwner(ctx, id)
	require.NoError(t, err)
	out.Reset()
	require.NoError(t, run(ctx, svc, []string{"list-owners", "-status", "active"}, &out))
	assert.Contains(t, out.String(), "owner@example.com")
}

func TestRun_Errors(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	var out bytes.Buffer

	usageCases := [][]string{
		nil,
		{"frobnicate"},
		{"approve"},
		{"set-quota", "1"},
		{"list-owners", "-bogus"},
	}
	for _, args := range usageCases {
		assert.ErrorIs(t, run(ctx, svc, args, &out), errUsage, "%v", args)
	}

	assert.Error(t, run(ctx, svc, []string{"approve", "abc"}, &out))
	assert.Error(t, run(ctx, svc, []string{"set-quota", "1", "many"}, &out))
	assert.ErrorIs(t, run(ctx, svc, []string{"approve", "999"}, &out), admin.ErrOwnerNotFound)
	assert.ErrorIs(t, run(ctx, svc, []string{"list-owners", "-status", "banned"}, &out), admin.ErrInvalidStatus)
}

func int64String(n int64) string {
	return strconv.FormatInt(n, 10)
}
