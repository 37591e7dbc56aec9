package dbs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubjectHasPermissionFalseWhenAnonymous(t *testing.T) {
	r := require.New(t)
	s := Subject{IsAnonymous: true, Scopes: map[Permission]bool{PermEdit: true}}
	r.False(s.HasPermission(PermEdit))
}

func TestOptionsApplyOptionTogglesModesCaseInsensitively(t *testing.T) {
	r := require.New(t)
	opts := &Options{}
	sess := NewSession(Subject{ID: "root", Scopes: map[Permission]bool{PermOption: true}})

	r.NoError(opts.applyOption(sess, "import", true))
	r.True(opts.ImportMode)

	r.NoError(opts.applyOption(sess, "FORCE", true))
	r.True(opts.ForceAll)
}

func TestOptionsApplyOptionRejectsWithoutPermission(t *testing.T) {
	r := require.New(t)
	opts := &Options{AuthEnabled: true}
	sess := NewSession(Subject{ID: "root"}) // no PermOption scope
	err := opts.applyOption(sess, "force", true)
	r.ErrorIs(err, ErrNotEnoughPermissions)
	r.False(opts.ForceAll)
}
