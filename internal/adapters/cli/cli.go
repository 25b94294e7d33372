// Package cli implements the one-shot admin commands of cmd/app.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"auction-house/internal/app"
)

// Usage lists the available commands.
const Usage = `Usage: app <command> [args]

  users                                      list staff accounts
  user add <username> <role> <display name>  create an account (password read from stdin)
  lots                                       list the catalogue
  lot add <number> <title> [low] [high]      add a lot
  display                                    show what the projector shows
  show <number>                              put a lot on the projector
  banner [text]                              set the projector banner (no text clears it)`

// ErrUsage is returned for an unknown command or missing arguments.
var ErrUsage = errors.New("invalid usage")

// Run executes a one-shot CLI command. args is os.Args[1:]; the first element
// is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string, stdin io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return ErrUsage
	}
	switch args[0] {
	case "users":
		res, err := svc.ListUsers(ctx)
		if err != nil {
			return err
		}
		printUsers(out, res)

	case "user":
		if len(args) < 5 || args[1] != "add" {
			return fmt.Errorf("%w: app user add <username> <role> <display name>", ErrUsage)
		}
		password, err := readPassword(stdin)
		if err != nil {
			return err
		}
		res, err := svc.CreateUser(ctx, app.CreateUserRequest{
			Username:    args[2],
			Role:        args[3],
			DisplayName: strings.Join(args[4:], " "),
			Password:    password,
		})
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		fmt.Fprintf(out, "Created %s (%s, id %d).\n", res.Username, res.Role, res.UserID)

	case "lots":
		res, err := svc.ListLots(ctx)
		if err != nil {
			return err
		}
		printLots(out, res)

	case "lot":
		if len(args) < 4 || args[1] != "add" {
			return fmt.Errorf("%w: app lot add <number> <title> [low] [high]", ErrUsage)
		}
		req, err := parseLot(args[2:])
		if err != nil {
			return err
		}
		res, err := svc.CreateLot(ctx, req)
		if err != nil {
			return fmt.Errorf("create lot: %w", err)
		}
		fmt.Fprintf(out, "Added lot %d: %s\n", res.Lot.Number, res.Lot.Title)

	case "display":
		res, err := svc.GetDisplay(ctx)
		if err != nil {
			return err
		}
		d := res.Display
		if d.Banner != "" {
			fmt.Fprintf(out, "Banner : %s\n", d.Banner)
		}
		if d.CurrentLot == nil {
			fmt.Fprintln(out, "Lot    : none")
		} else {
			fmt.Fprintf(out, "Lot    : %d %s\n", d.CurrentLot.Number, d.CurrentLot.Title)
		}

	case "show":
		if len(args) != 2 {
			return fmt.Errorf("%w: app show <number>", ErrUsage)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: lot number %q", ErrUsage, args[1])
		}
		res, err := svc.ShowLot(ctx, n)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Lot %d is now on display\n", res.Lot.Number)

	case "banner":
		text := strings.Join(args[1:], " ")
		if err := svc.SetBanner(ctx, text); err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			fmt.Fprintln(out, "Banner cleared.")
		} else {
			fmt.Fprintln(out, "Banner updated.")
		}

	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	return nil
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("read password: empty password on stdin")
	}
	return line, nil
}

func parseLot(args []string) (app.CreateLotRequest, error) {
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return app.CreateLotRequest{}, fmt.Errorf("%w: lot number %q", ErrUsage, args[0])
	}
	req := app.CreateLotRequest{Number: n, Title: args[1]}
	if len(args) > 2 {
		if req.EstimateLow, err = decimal.NewFromString(args[2]); err != nil {
			return req, fmt.Errorf("%w: low estimate %q", ErrUsage, args[2])
		}
		req.EstimateHigh = req.EstimateLow
	}
	if len(args) > 3 {
		if req.EstimateHigh, err = decimal.NewFromString(args[3]); err != nil {
			return req, fmt.Errorf("%w: high estimate %q", ErrUsage, args[3])
		}
	}
	return req, nil
}

func printUsers(out io.Writer, res *app.UserListResult) {
	fmt.Fprintf(out, "  %-16s %-24s %-11s %s\n", "USERNAME", "NAME", "ROLE", "STATUS")
	fmt.Fprintln(out, strings.Repeat("-", 62))
	for _, u := range res.Users {
		status := "active"
		if !u.IsActive {
			status = "disabled"
		}
		fmt.Fprintf(out, "  %-16s %-24s %-11s %s\n", u.Username, u.DisplayName, u.Role, status)
	}
}

func printLots(out io.Writer, res *app.LotListResult) {
	fmt.Fprintf(out, "  %-6s %-40s %s\n", "LOT", "TITLE", "ESTIMATE")
	fmt.Fprintln(out, strings.Repeat("-", 62))
	for _, l := range res.Lots {
		fmt.Fprintf(out, "  %-6d %-40s %s\n", l.Number, l.Title, l.Estimate())
	}
}
