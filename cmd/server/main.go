// Command server runs the clinicauth provider: accounts, sessions and
// profile records over gRPC.
//
//	server [flags]                 serve
//	server disable <email> [flags] block sign-in for an account
//	server enable <email> [flags]  unblock it
package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/clinicauth/internal/buildinfo"
	"github.com/dmitrijs2005/clinicauth/internal/server"
	"github.com/dmitrijs2005/clinicauth/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	if len(os.Args) > 2 && (os.Args[1] == "disable" || os.Args[1] == "enable") {
		err := app.SetDisabled(ctx, os.Args[2], os.Args[1] == "disable")
		_ = app.Close()
		if err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	app.Run(ctx)

}
