package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRun_ExitCodes(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	aci := uuid.NewString()

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "missing identity", args: []string{"-d", "x.db"}, want: 2},
		{name: "unknown command", args: []string{"frobnicate", "-aci", aci}, want: 1},
		{name: "bad enqueue", args: []string{"enqueue", "bogus", "1", "-aci", aci}, want: 1},
		{name: "single pass", args: []string{"run", "-aci", aci}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := filepath.Join(t.TempDir(), "test.db")
			os.Args = append([]string{"storagesync"}, append(tt.args, "-d", dsn, "-log-level", "error")...)

			assert.Equal(t, tt.want, run())
		})
	}
}
