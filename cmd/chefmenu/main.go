// Command chefmenu manages the restaurant dish list from the shell and serves
// it over HTTP.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"chefmenu/internal/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

const usage = `usage: chefmenu <command> [flags]

commands:
  serve          run the HTTP API
  init           seed the store when it has never been written
  list           list dishes (-course)
  show           show one dish (-id)
  add            add a dish (-name -description -course -price, login required)
  update         replace a dish (-id plus add flags, login required)
  remove         remove a dish (-id, login required)
  average        average price (-course)
  import         import an .xlsx menu (-file, login required)
  export         export the menu to .xlsx (-file, -course)
  hash-password  print a bcrypt hash for CHEFMENU_ADMIN_PASSWORD_HASH (-password)
`

type command func(ctx context.Context, env *cliEnv, args []string) error

var commands = map[string]command{
	"serve":         cmdServe,
	"init":          cmdInit,
	"list":          cmdList,
	"show":          cmdShow,
	"add":           cmdAdd,
	"update":        cmdUpdate,
	"remove":        cmdRemove,
	"average":       cmdAverage,
	"import":        cmdImport,
	"export":        cmdExport,
	"hash-password": cmdHashPassword,
}

// run executes one command and returns the process exit code: 0 on success,
// 1 on failure and 2 on usage errors.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
	env := &cliEnv{stdout: stdout, stderr: stderr}
	defer env.close()
	if err := cmd(ctx, env, args[1:]); err != nil {
		if isUsage(err) {
			return 2
		}
		fmt.Fprintf(stderr, "chefmenu %s: %v\n", args[0], err)
		return 1
	}
	return 0
}
