// Command condensedb-example is a thin demonstration CLI: it brings up an
// in-memory vault and engine, adds a schema document and a document that
// satisfies it, and prints what comes back from a query against the root.
// It exists to exercise the public API end to end, not as a supported
// server binary.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v2"

	"github.com/cognoscan/condensedb/codec"
	"github.com/cognoscan/condensedb/document"
	"github.com/cognoscan/condensedb/engine"
	"github.com/cognoscan/condensedb/permission"
	"github.com/cognoscan/condensedb/vault"
)

var gitCommitSHA = ""

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, syscall.SIGTERM, syscall.SIGINT)
		select {
		case <-interrupt:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(interrupt)
	}()

	app := &cli.App{
		Name:        "condensedb-example",
		Version:     gitCommitSHA,
		Description: "demonstrates condensedb's vault/engine API with a schema and a document",
		Commands: []*cli.Command{
			newCmdRun(),
		},
	}
	sort.Sort(cli.CommandsByName(app.Commands))

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCmdRun() *cli.Command {
	return &cli.Command{
		Name:        "run",
		Description: "add a schema, add a conforming document, query it back",
		Action: func(cctx *cli.Context) error {
			return runDemo(cctx.Context)
		},
	}
}

func runDemo(ctx context.Context) error {
	v := vault.New()
	defer v.Close()

	db, err := engine.New(ctx, v)
	if err != nil {
		return fmt.Errorf("engine.New: %w", err)
	}
	defer db.Close()

	schemaVal := codec.NewMap([]codec.MapEntry{
		{Key: "name", Val: codec.String("example.person")},
		{Key: "req", Val: codec.NewMap([]codec.MapEntry{
			{Key: "age", Val: codec.NewMap([]codec.MapEntry{
				{Key: "type", Val: codec.String("Int")},
				{Key: "min", Val: codec.Int(0)},
				{Key: "max", Val: codec.Int(130)},
			})},
		})},
	})
	schemaDoc, err := document.New(schemaVal)
	if err != nil {
		return fmt.Errorf("document.New(schema): %w", err)
	}

	everyone := permission.Permission{Advertise: true, MachineLocal: true, Direct: true, LocalNet: true, Global: true, Anonymous: true}
	if res := <-db.AddDoc(schemaDoc, everyone, 0); res != engine.Ok {
		return fmt.Errorf("AddDoc(schema): %s", res)
	}

	personVal := codec.NewMap([]codec.MapEntry{
		{Key: "", Val: codec.HashVal(schemaDoc.Hash())},
		{Key: "age", Val: codec.Int(34)},
	})
	personDoc, err := document.New(personVal)
	if err != nil {
		return fmt.Errorf("document.New(person): %w", err)
	}
	if res := <-db.AddDoc(personDoc, everyone, 0); res != engine.Ok {
		return fmt.Errorf("AddDoc(person): %s", res)
	}

	stream := db.Query(engine.Query{Roots: []engine.QueryRoot{{Root: personDoc.Hash()}}}, everyone, 4)
	for resp := range stream.Results() {
		spew.Dump(resp)
		if resp.Terminal() {
			break
		}
	}

	time.Sleep(10 * time.Millisecond) // let the control loop settle before Close
	return nil
}
