package command

import (
	"bytes"
	"context"
	"testing"

	"rewear/internal/core"
	"rewear/internal/identity"
	"rewear/internal/service"
	"rewear/internal/telemetry"
	"rewear/internal/testutil"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDirectory map[string]*identity.Identity

func (f fakeDirectory) LookupByEmail(_ context.Context, email string) (*identity.Identity, error) {
	if ident, ok := f[email]; ok {
		return ident, nil
	}
	return nil, identity.ErrUserNotFound
}

func newAdminCmd(t *testing.T, mem *testutil.Memory, dir fakeDirectory, args ...string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	users := service.NewUserService(telemetry.NewNoopTrace(), zap.NewNop(), mem.Users())
	h := NewAdminHandler(zap.NewNop(), dir, users)

	out := &bytes.Buffer{}
	cmd := &cobra.Command{Use: "create-admin", RunE: h.CreateAdmin, SilenceUsage: true, SilenceErrors: true}
	AdminFlags(cmd)
	cmd.SetOut(out)
	cmd.SetArgs(args)
	return cmd, out
}

func TestCreateAdmin_LooksUpByEmail(t *testing.T) {
	mem := testutil.NewMemory()
	dir := fakeDirectory{"admin@rewear.com": {Subject: "uid-admin", Email: "admin@rewear.com"}}

	cmd, out := newAdminCmd(t, mem, dir)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Admin user created")

	user, err := mem.Users().GetByFirebaseUID(context.Background(), "uid-admin")
	require.NoError(t, err)
	assert.Equal(t, core.RoleAdmin, user.Role)
	assert.Equal(t, int64(1000), user.Points)
	assert.Equal(t, "Admin User", user.Name)
}

func TestCreateAdmin_PromotesExistingUser(t *testing.T) {
	mem := testutil.NewMemory()
	bob := mem.SeedUser("Bob", core.RoleUser, 20)

	cmd, out := newAdminCmd(t, mem, fakeDirectory{}, "--uid", bob.FirebaseUID, "--email", bob.Email, "--points", "500")
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "promoted")

	user, err := mem.Users().GetByID(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, core.RoleAdmin, user.Role)
}

func TestCreateAdmin_Errors(t *testing.T) {
	mem := testutil.NewMemory()

	cmd, _ := newAdminCmd(t, mem, fakeDirectory{}, "--email", "ghost@rewear.com")
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	cmd, _ = newAdminCmd(t, mem, fakeDirectory{}, "--uid", "x", "--points", "-1")
	require.Error(t, cmd.Execute())
}
