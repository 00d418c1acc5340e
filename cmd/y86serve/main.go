// Command y86serve starts the HTTP front end for the Y86-64 simulator:
// upload a .yo program, single-step it, run it to completion, or reset
// it, all over JSON.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	cli "gopkg.in/urfave/cli.v2"

	y86 "github.com/user-none/go-y86"
	"github.com/user-none/go-y86/httpapi"
)

func main() {
	app := &cli.App{
		Name:  "y86serve",
		Usage: "serve the Y86-64 simulator over HTTP",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "TCP port to listen on",
				Value: 8080,
			},
			&cli.IntFlag{
				Name:  "cap",
				Usage: "maximum number of instructions to execute per run before giving up",
				Value: y86.DefaultStepCap,
			},
			&cli.Int64Flag{
				Name:  "max-upload-mb",
				Usage: "maximum accepted .yo upload size, in megabytes",
				Value: 16,
			},
		},
		Action: serve,
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("y86serve: failed")
	}
}

func serve(c *cli.Context) error {
	log := logrus.StandardLogger()

	srv := httpapi.NewServer(
		httpapi.WithStepCap(c.Int("cap")),
		httpapi.WithMaxUploadMB(c.Int64("max-upload-mb")),
		httpapi.WithLogger(log),
	)

	addr := fmt.Sprintf(":%d", c.Int("port"))
	log.WithFields(logrus.Fields{
		"addr": addr,
		"cap":  c.Int("cap"),
	}).Info("y86serve: listening")

	return http.ListenAndServe(addr, srv.Router())
}
