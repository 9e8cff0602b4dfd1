// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/pkg/errutil"
)

// mockMigrator records calls so the subcommand wiring can be verified
// without a database.
type mockMigrator struct {
	upCalled      bool
	downCalled    bool
	versionCalled bool
	forcedTo      int
	closed        bool

	upErr      error
	downErr    error
	versionVal uint
	dirty      bool
	versionErr error
	forceErr   error
	closeErr   error
}

func (m *mockMigrator) Up() error   { m.upCalled = true; return m.upErr }
func (m *mockMigrator) Down() error { m.downCalled = true; return m.downErr }
func (m *mockMigrator) Version() (uint, bool, error) {
	m.versionCalled = true
	return m.versionVal, m.dirty, m.versionErr
}
func (m *mockMigrator) Force(version int) error { m.forcedTo = version; return m.forceErr }
func (m *mockMigrator) Close() error            { m.closed = true; return m.closeErr }

// runMigrate executes the migrate subcommand against a mock migrator.
func runMigrate(t *testing.T, mock *mockMigrator, args ...string) (string, string, error) {
	t.Helper()

	configFile = ""
	original := newMigrator
	newMigrator = func(_ string) (migratorIface, error) { return mock, nil }
	t.Cleanup(func() { newMigrator = original })

	cmd := NewRootCmd()
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(append([]string{"migrate"}, args...))

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestMigrateUp(t *testing.T) {
	t.Run("applies migrations and closes", func(t *testing.T) {
		mock := &mockMigrator{}
		out, _, err := runMigrate(t, mock, "up", "--database_url=postgres://localhost/gatewarden")
		require.NoError(t, err)
		assert.True(t, mock.upCalled)
		assert.True(t, mock.closed)
		assert.Contains(t, out, "Migrations applied")
	})

	t.Run("propagates migration failure", func(t *testing.T) {
		mock := &mockMigrator{upErr: errors.New("table locked")}
		_, _, err := runMigrate(t, mock, "up", "--database_url=postgres://localhost/gatewarden")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "table locked")
		assert.True(t, mock.closed, "migrator should be closed even on failure")
	})
}

func TestMigrateDown(t *testing.T) {
	mock := &mockMigrator{}
	out, _, err := runMigrate(t, mock, "down", "--database_url=postgres://localhost/gatewarden")
	require.NoError(t, err)
	assert.True(t, mock.downCalled)
	assert.Contains(t, out, "Migrations rolled back")
}

func TestMigrateVersion(t *testing.T) {
	mock := &mockMigrator{versionVal: 3, dirty: true}
	out, _, err := runMigrate(t, mock, "version", "--database_url=postgres://localhost/gatewarden")
	require.NoError(t, err)
	assert.True(t, mock.versionCalled)
	assert.Contains(t, out, "version: 3 dirty: true")
}

func TestMigrateForce(t *testing.T) {
	t.Run("forces the given version", func(t *testing.T) {
		mock := &mockMigrator{}
		out, _, err := runMigrate(t, mock, "force", "2", "--database_url=postgres://localhost/gatewarden")
		require.NoError(t, err)
		assert.Equal(t, 2, mock.forcedTo)
		assert.Contains(t, out, "version forced to 2")
	})

	t.Run("rejects non-numeric version", func(t *testing.T) {
		mock := &mockMigrator{}
		_, _, err := runMigrate(t, mock, "force", "abc", "--database_url=postgres://localhost/gatewarden")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "INVALID_VERSION")
		assert.False(t, mock.closed, "migrator should not be constructed for a bad argument")
	})
}

func TestMigrate_RequiresDatabaseURL(t *testing.T) {
	mock := &mockMigrator{}
	_, _, err := runMigrate(t, mock, "up")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	assert.False(t, mock.upCalled)
}

func TestMigrate_CloseErrorGoesToStderr(t *testing.T) {
	mock := &mockMigrator{closeErr: errors.New("connection already closed")}
	_, errOut, err := runMigrate(t, mock, "up", "--database_url=postgres://localhost/gatewarden")
	require.NoError(t, err, "close errors are reported, not fatal")
	assert.Contains(t, errOut, "connection already closed")
}

func TestMigrate_ConstructionErrorPropagated(t *testing.T) {
	configFile = ""
	original := newMigrator
	newMigrator = func(_ string) (migratorIface, error) {
		return nil, errors.New("cannot reach database")
	}
	t.Cleanup(func() { newMigrator = original })

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"migrate", "up", "--database_url=postgres://localhost/gatewarden"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot reach database")
}
