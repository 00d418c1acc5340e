// Command y86sim runs a Y86-64 .yo object file to completion and writes
// its final architectural state as YAML.
//
// Usage:
//
//	y86sim <input.yo> <output.yml>
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	cli "gopkg.in/urfave/cli.v2"

	y86 "github.com/user-none/go-y86"
)

func main() {
	app := &cli.App{
		Name:      "y86sim",
		Usage:     "run a Y86-64 .yo program and emit its final state as YAML",
		ArgsUsage: "<input.yo> <output.yml>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "cap",
				Usage: "maximum number of instructions to execute before giving up",
				Value: y86.DefaultStepCap,
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Error("y86sim: failed")
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("expected exactly 2 arguments, got %d: %s", c.NArg(), c.ArgsUsage)
	}
	inputPath := c.Args().Get(0)
	outputPath := c.Args().Get(1)

	content, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	image, err := y86.ParseYO(string(content))
	if err != nil {
		return err
	}

	cpu := y86.New()
	if err := cpu.Load(image); err != nil {
		return err
	}

	driver := y86.NewDriver()
	snap, err := driver.Run(cpu, c.Int("cap"))
	if err != nil {
		return err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outputPath, err)
	}
	defer out.Close()

	fs := y86.BuildFinalState(snap)
	if err := y86.WriteFinalState(out, fs); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}

	logrus.WithFields(logrus.Fields{
		"input":  inputPath,
		"output": outputPath,
		"status": snap.Status.String(),
	}).Info("y86sim: done")
	return nil
}
