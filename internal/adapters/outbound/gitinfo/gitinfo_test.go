package gitinfo_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/Mike-Gough/raml-enforcer/internal/adapters/outbound/gitinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func committedRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@test.com")
	runGit(t, dir, "config", "user.name", "Test")

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "api"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api", "users.raml"), []byte("#%RAML 1.0\ntitle: Users\n"), 0644))
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "init")
	return dir
}

func TestGitInfo_CommitHash_ReturnsHash(t *testing.T) {
	dir := committedRepo(t)

	hash, err := gitinfo.New().CommitHash(dir)
	require.NoError(t, err)
	assert.Len(t, hash, 40, "should be a full SHA-1 hash")
}

func TestGitInfo_CommitHash_FromNestedFile(t *testing.T) {
	dir := committedRepo(t)

	fromRoot, err := gitinfo.New().CommitHash(dir)
	require.NoError(t, err)
	fromFile, err := gitinfo.New().CommitHash(filepath.Join(dir, "api", "users.raml"))
	require.NoError(t, err)
	assert.Equal(t, fromRoot, fromFile)
}

func TestGitInfo_CommitHash_NotGitRepo(t *testing.T) {
	dir := t.TempDir()
	_, err := gitinfo.New().CommitHash(dir)
	assert.Error(t, err)
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, string(out))
}
