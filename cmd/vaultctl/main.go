// Command vaultctl manages the local secret vault from a terminal.
//
// Usage:
//
//	vaultctl [-db path] <command> [args]
//
// Commands:
//
//	init               set the master password (once per vault)
//	list [substr]      list secret names, optionally filtered
//	add [flags] <name> create or replace a secret
//	get <name>         print a secret's fields
//	delete <name>      remove a secret
//	conn <name>        print a secret as a connection string
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"

	"golang.org/x/term"

	sqliteadapter "github.com/ericfisherdev/secretvault/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/secretvault/internal/application"
	"github.com/ericfisherdev/secretvault/internal/config"
	"github.com/ericfisherdev/secretvault/internal/domain/model"
)

// promptFunc asks for a value without echoing it.
type promptFunc func(label string) (string, error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, terminalPrompt(os.Stdin, os.Stderr)); err != nil {
		fmt.Fprintln(os.Stderr, "vaultctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, prompt promptFunc) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("vaultctl", flag.ContinueOnError)
	fs.SetOutput(out)
	dbPath := fs.String("db", cfg.DBPath, "path to the vault database")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: vaultctl [-db path] <init|list|add|get|delete|conn> [args]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return errors.New("missing command")
	}

	level := slog.LevelWarn
	if _, ok := os.LookupEnv("SECRETVAULT_LOG_LEVEL"); ok {
		level = cfg.LogLevel
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	db, err := sqliteadapter.NewDB(ctx, *dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}

	c := &cli{
		vault: application.NewVaultService(
			sqliteadapter.NewMasterPasswordRepo(db),
			sqliteadapter.NewSecretRepo(db),
			logger,
		),
		out:    out,
		prompt: prompt,
	}

	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "init":
		return c.init(ctx)
	case "list":
		return c.list(ctx, cmdArgs)
	case "add":
		return c.add(ctx, cmdArgs)
	case "get":
		return c.get(ctx, cmdArgs)
	case "delete":
		return c.delete(ctx, cmdArgs)
	case "conn":
		return c.conn(ctx, cmdArgs)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

type cli struct {
	vault  *application.VaultService
	out    io.Writer
	prompt promptFunc
}

func (c *cli) init(ctx context.Context) error {
	set, err := c.vault.IsMasterPasswordSet(ctx)
	if err != nil {
		return err
	}
	if set {
		return errors.New("master password is already set")
	}

	password, err := c.prompt("New master password: ")
	if err != nil {
		return err
	}
	confirm, err := c.prompt("Repeat master password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	if err := c.vault.SetMasterPassword(ctx, password); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "master password set")
	return nil
}

func (c *cli) list(ctx context.Context, args []string) error {
	var substr string
	if len(args) > 0 {
		substr = args[0]
	}

	names, err := c.vault.SearchSecrets(ctx, substr)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(c.out, name)
	}
	return nil
}

func (c *cli) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(c.out)
	host := fs.String("host", "", "host")
	port := fs.String("port", "", "port")
	database := fs.String("database", "", "database name")
	username := fs.String("username", "", "login (required)")
	password := fs.String("password", "", "password (prompted when omitted)")
	typ := fs.String("type", model.DefaultSecretType, "secret type")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: vaultctl add [flags] <name>")
	}
	name := model.NormalizeSecretName(fs.Arg(0))
	if name == "" {
		return errors.New("secret name is required")
	}

	if *password == "" {
		p, err := c.prompt("Secret password: ")
		if err != nil {
			return err
		}
		*password = p
	}

	fields := model.SecretFields{
		model.FieldHost:     *host,
		model.FieldPort:     *port,
		model.FieldDatabase: *database,
		model.FieldUsername: *username,
		model.FieldPassword: *password,
		model.FieldType:     *typ,
	}
	if err := fields.Validate(); err != nil {
		return err
	}

	master, err := c.prompt("Master password: ")
	if err != nil {
		return err
	}
	if err := c.vault.SaveSecret(ctx, name, fields.WithDefaults(), master); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "secret %q saved\n", name)
	return nil
}

func (c *cli) get(ctx context.Context, args []string) error {
	name, master, err := c.nameAndMaster(args)
	if err != nil {
		return err
	}

	fields, err := c.vault.GetSecret(ctx, name, master)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(c.out, "%s: %s\n", k, fields[k])
	}
	return nil
}

func (c *cli) delete(ctx context.Context, args []string) error {
	name, master, err := c.nameAndMaster(args)
	if err != nil {
		return err
	}

	if err := c.vault.DeleteSecret(ctx, name, master); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "secret %q deleted\n", name)
	return nil
}

func (c *cli) conn(ctx context.Context, args []string) error {
	name, master, err := c.nameAndMaster(args)
	if err != nil {
		return err
	}

	conn, err := c.vault.ConnectionString(ctx, name, master)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, conn)
	return nil
}

func (c *cli) nameAndMaster(args []string) (name, master string, err error) {
	if len(args) != 1 {
		return "", "", errors.New("expected exactly one secret name")
	}
	master, err = c.prompt("Master password: ")
	if err != nil {
		return "", "", err
	}
	return args[0], master, nil
}

// terminalPrompt reads without echo when in is a terminal, and reads one line
// per prompt otherwise so the tool can be scripted.
func terminalPrompt(in *os.File, errOut io.Writer) promptFunc {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		return func(label string) (string, error) {
			fmt.Fprint(errOut, label)
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(errOut)
			if err != nil {
				return "", fmt.Errorf("read password: %w", err)
			}
			return string(b), nil
		}
	}

	reader := bufio.NewReader(in)
	return func(string) (string, error) {
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}
