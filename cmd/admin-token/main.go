// Package main provides a one-shot utility for the admin gate.
//
// With no arguments it emits the asymmetric keypair used to sign and
// verify admin grants. The mint subcommand signs a grant for a caller.
package main

import (
	"flag"
	"os"
	"time"

	entrypoint "github.com/cazala/landgiver/internal/platform/cmd"
	"github.com/cazala/landgiver/internal/platform/config"
	"github.com/cazala/landgiver/internal/tools/admintoken"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "mint" {
		mint(os.Args[2:])
		return
	}
	if err := admintoken.GenerateKeys(os.Stdout, nil); err != nil {
		config.Exitf("generate admin gate key: %v", err)
	}
}

func mint(args []string) {
	fs := flag.NewFlagSet(entrypoint.ServiceAdminToken+" mint", flag.ExitOnError)
	issuer := fs.String("issuer", os.Getenv("LANDGIVER_ADMIN_ISSUER"), "grant issuer")
	audience := fs.String("audience", os.Getenv("LANDGIVER_ADMIN_AUDIENCE"), "grant audience")
	subject := fs.String("subject", "", "caller principal the grant names")
	ttl := fs.Duration("ttl", time.Hour, "grant lifetime")
	if err := fs.Parse(args); err != nil {
		config.Exitf("parse mint flags: %v", err)
	}

	err := admintoken.Mint(os.Stdout, admintoken.MintParams{
		PrivateKey: os.Getenv("LANDGIVER_ADMIN_PRIVATE_KEY"),
		Issuer:     *issuer,
		Audience:   *audience,
		Subject:    *subject,
		TTL:        *ttl,
	})
	if err != nil {
		config.Exitf("mint admin grant: %v", err)
	}
}
