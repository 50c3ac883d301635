//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package dnswalk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadRootServers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "root-servers.txt")
	content := "# the first entry has the highest priority\n" +
		"198.41.0.4\n" +
		"\n" +
		"  199.9.14.201  \n" +
		"192.33.4.12\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	servers, err := LoadRootServers(path)
	require.NoError(t, err)
	require.Equal(t, []string{"198.41.0.4", "199.9.14.201", "192.33.4.12"}, servers)
}

func TestLoadRootServersEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "root-servers.txt")
	require.NoError(t, os.WriteFile(path, []byte("# nothing here\n"), 0o644))

	_, err := LoadRootServers(path)
	require.Error(t, err)
}

func TestLoadRootServersMissingFile(t *testing.T) {
	_, err := LoadRootServers(filepath.Join(t.TempDir(), "nope.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
