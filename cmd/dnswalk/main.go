//
// SPDX-License-Identifier: GPL-3.0-or-later
//

// Command dnswalk resolves a hostname by walking the DNS delegation
// hierarchy from the root servers listed in a file.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/bassosimone/dnswalk"
)

func main() {
	var (
		mx      = flag.Bool("m", false, "resolve the mail exchange instead of the address")
		roots   = flag.String("roots", "root-servers.txt", "file listing root server addresses in priority order")
		timeout = flag.Duration("timeout", dnswalk.DefaultTimeout, "per-query timeout")
		verbose = flag.Bool("v", false, "log every hop of the walk to stderr")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-m] [-roots file] [-timeout d] [-v] hostname\n", os.Args[0])
		os.Exit(2)
	}
	hostname := flag.Arg(0)

	servers, err := dnswalk.LoadRootServers(*roots)
	if err != nil {
		fatal(err)
	}

	resolver := dnswalk.NewResolver(servers)
	resolver.Timeout = *timeout
	if *verbose {
		resolver.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	result, err := resolver.Resolve(hostname, *mx)
	if err != nil {
		fatal(err)
	}

	switch result.Outcome {
	case dnswalk.OutcomeResolved:
		if *mx {
			fmt.Printf("The mail exchange for %s resolves to: %s\n", hostname, result.Address)
		} else {
			fmt.Printf("The name %s resolves to: %s\n", hostname, result.Address)
		}
	default:
		fmt.Println(result.Outcome)
		os.Exit(1)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
