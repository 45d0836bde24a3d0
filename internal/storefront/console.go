package storefront

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pizza-storefront/internal/common/logger"
	"pizza-storefront/internal/models"
)

const prompt = "pizza> "

// Console drives an App from line commands.
type Console struct {
	app    *App
	in     io.Reader
	out    io.Writer
	logger logger.Logger
}

func NewConsole(app *App, in io.Reader, out io.Writer, log logger.Logger) *Console {
	return &Console{
		app:    app,
		in:     in,
		out:    out,
		logger: log.WithFields(map[string]interface{}{"component": "console"}),
	}
}

// Run reads commands until the input ends, quit is entered or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	c.print(c.app.Start(ctx))

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(c.out, prompt)
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(c.out)
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if quit := c.Execute(ctx, line); quit {
				return nil
			}
		}
	}
}

// Execute runs one command line and prints the resulting view. It reports whether the
// console should stop.
func (c *Console) Execute(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	c.logger.Debug("Command", map[string]interface{}{"command": cmd, "args": len(args)})

	if cmd == "quit" || cmd == "exit" {
		return true
	}
	if cmd == "help" {
		fmt.Fprint(c.out, usage)
		return false
	}

	view, err := c.dispatch(ctx, cmd, args)
	if err != nil {
		fmt.Fprintf(c.out, "! %s\n", err.Error())
		return false
	}
	c.print(view)
	return false
}

func (c *Console) dispatch(ctx context.Context, cmd string, args []string) (View, error) {
	app := c.app
	switch cmd {
	case "menu":
		return app.OpenMenu(ctx), nil
	case "store":
		if len(args) != 2 {
			return View{}, usageError("store <franchise id> <store id>")
		}
		return app.SelectStore(models.ID(args[0]), models.ID(args[1])), nil
	case "toggle":
		if len(args) != 1 {
			return View{}, usageError("toggle <menu id>")
		}
		return app.ToggleItem(models.ID(args[0])), nil
	case "checkout":
		return app.Checkout(ctx), nil
	case "pay":
		return app.Pay(ctx), nil
	case "verify":
		return app.Verify(ctx), nil

	case "login":
		if len(args) != 2 {
			return View{}, usageError("login <email> <password>")
		}
		return app.Login(ctx, args[0], args[1]), nil
	case "register":
		if len(args) < 3 {
			return View{}, usageError("register <name> <email> <password>")
		}
		n := len(args)
		return app.Register(ctx, strings.Join(args[:n-2], " "), args[n-2], args[n-1]), nil
	case "logout":
		return app.Logout(ctx), nil

	case "admin":
		return app.OpenAdmin(ctx, strings.Join(args, " ")), nil
	case "franchise":
		return app.OpenFranchise(ctx), nil
	case "diner":
		return app.OpenDiner(ctx), nil
	case "users":
		return app.OpenUsers(ctx, strings.Join(args, " ")), nil
	case "page":
		if len(args) != 1 {
			return View{}, usageError("page <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return View{}, usageError("page <n>")
		}
		return app.Page(ctx, n), nil

	case "create-franchise":
		if len(args) < 2 {
			return View{}, usageError("create-franchise <admin email> <name>")
		}
		return app.CreateFranchise(ctx, strings.Join(args[1:], " "), args[0]), nil
	case "create-store":
		if len(args) < 2 {
			return View{}, usageError("create-store <franchise id> <name>")
		}
		return app.CreateStore(ctx, models.ID(args[0]), strings.Join(args[1:], " ")), nil
	case "profile":
		if len(args) < 2 {
			return View{}, usageError("profile name|email|password <value>")
		}
		value := strings.Join(args[1:], " ")
		switch args[0] {
		case "name":
			return app.UpdateProfile(ctx, value, "", ""), nil
		case "email":
			return app.UpdateProfile(ctx, "", value, ""), nil
		case "password":
			return app.UpdateProfile(ctx, "", "", value), nil
		}
		return View{}, usageError("profile name|email|password <value>")

	case "close-franchise":
		if len(args) != 1 {
			return View{}, usageError("close-franchise <franchise id>")
		}
		return app.RequestCloseFranchise(models.ID(args[0])), nil
	case "close-store":
		if len(args) != 1 {
			return View{}, usageError("close-store <store id>")
		}
		return app.RequestCloseStore(models.ID(args[0])), nil
	case "delete-user":
		if len(args) != 1 {
			return View{}, usageError("delete-user <user id>")
		}
		return app.RequestDeleteUser(models.ID(args[0])), nil
	case "confirm":
		return app.Confirm(ctx), nil
	case "cancel":
		return app.Cancel(), nil
	case "back":
		return app.Back(), nil
	}
	return View{}, fmt.Errorf("unknown command %q, try help", cmd)
}

func (c *Console) print(v View) {
	fmt.Fprint(c.out, v.Text())
}

func usageError(u string) error {
	return fmt.Errorf("usage: %s", u)
}

const usage = `menu                                  show the menu and stores
store <franchise id> <store id>       pick the store to order from
toggle <menu id>                      add or remove a pizza
checkout                              go to payment, signing in if needed
pay                                   place the order
verify                                verify the receipt of the order shown
login <email> <password>
register <name> <email> <password>
logout
diner                                 your account and orders
profile name|email|password <value>   update your account
franchise                             your franchises
admin [name filter]                   franchise directory
users [name filter]                   user directory
page <n>                              another page of the list shown
create-franchise <admin email> <name>
create-store <franchise id> <name>
close-franchise <franchise id>
close-store <store id>
delete-user <user id>
confirm | cancel                      answer a confirmation
back                                  previous screen
quit
`
