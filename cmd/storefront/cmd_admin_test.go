package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAdminHashPrintsBcryptHash(t *testing.T) {
	var out, errOut bytes.Buffer
	adminHashCmd.SetIn(strings.NewReader("s3cret\n"))
	adminHashCmd.SetOut(&out)
	adminHashCmd.SetErr(&errOut)

	require.NoError(t, adminHashCmd.RunE(adminHashCmd, nil))

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}

func TestAdminHashRejectsEmptyPassword(t *testing.T) {
	adminHashCmd.SetIn(strings.NewReader("\n"))
	adminHashCmd.SetOut(&bytes.Buffer{})
	adminHashCmd.SetErr(&bytes.Buffer{})

	assert.Error(t, adminHashCmd.RunE(adminHashCmd, nil))
}

func TestRouteListIncludesNamedRoutes(t *testing.T) {
	var out bytes.Buffer
	routeListCmd.SetOut(&out)

	require.NoError(t, routeListCmd.RunE(routeListCmd, nil))

	for _, name := range []string{"products.index", "cart.promo.apply", "checkout.store", "admin.orders.show"} {
		assert.Contains(t, out.String(), name)
	}
}

func TestScheduleListShowsCartPruning(t *testing.T) {
	var out bytes.Buffer
	scheduleListCmd.SetOut(&out)

	require.NoError(t, scheduleListCmd.RunE(scheduleListCmd, nil))
	assert.Contains(t, out.String(), "carts:prune")
}
