package main

import (
	"bytes"
	"testing"

	"github.com/maxviazov/taskboard-service/internal/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPagesCommand(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"pages", "--page", "5", "--total", "100", "--size", "10"}, "1 ... 4 5 6 ... 10\n"},
		{[]string{"pages", "-p", "1", "-t", "100", "-s", "10"}, "1 2 3 4 5 ... 10\n"},
		{[]string{"pages", "--page", "10", "--total", "100", "--size", "10"}, "1 ... 6 7 8 9 10\n"},
		{[]string{"pages", "--page", "2", "--total", "30", "--size", "10"}, "1 2 3\n"},
		{[]string{"pages", "--total", "0", "--size", "10"}, "\n"},
	}
	for _, tc := range cases {
		out, err := runCLI(t, tc.args...)
		require.NoError(t, err, tc.args)
		assert.Equal(t, tc.want, out, tc.args)
	}
}

func TestPagesCommand_JSON(t *testing.T) {
	out, err := runCLI(t, "pages", "--page", "5", "--total", "100", "--size", "10", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `[1,"...",4,5,6,"...",10]`, out)
}

func TestPagesCommand_InvalidSize(t *testing.T) {
	_, err := runCLI(t, "pages", "--total", "10", "--size", "0")
	require.Error(t, err)
	assert.ErrorIs(t, err, pagination.ErrInvalidArgument)
}

func TestPagesCommand_RejectsHugeInput(t *testing.T) {
	_, err := runCLI(t, "pages", "--total", "1125899906842624", "--size", "1", "--siblings", "1125899906842624")
	assert.ErrorIs(t, err, pagination.ErrInvalidArgument)

	_, err = runCLI(t, "pages", "--total", "100", "--size", "10", "--siblings", "3", "--max-siblings", "2")
	assert.ErrorIs(t, err, pagination.ErrInvalidArgument)

	out, err := runCLI(t, "pages", "--page", "5", "--total", "100", "--size", "10", "--siblings", "3", "--max-siblings", "3")
	require.NoError(t, err)
	assert.Equal(t, "1 2 3 4 5 6 7 8 9 10\n", out)
}

func TestMigrateCommand_HasSteps(t *testing.T) {
	root := rootCmd()
	mig, _, err := root.Find([]string{"migrate"})
	require.NoError(t, err)
	var names []string
	for _, c := range mig.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"up", "down", "status"}, names)
}

func TestLoadConfig_ExplicitMissingFileFails(t *testing.T) {
	_, err := runCLI(t, "migrate", "status", "--config", t.TempDir()+"/missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config loading failed")
}
