//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package dnswalk

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadRootServers reads root server addresses from path, one per line.
// The file order defines the fallback priority of the servers. Blank
// lines and lines starting with '#' are skipped.
func LoadRootServers(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var servers []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		servers = append(servers, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(servers) == 0 {
		return nil, fmt.Errorf("%s: no root servers listed", path)
	}
	return servers, nil
}
