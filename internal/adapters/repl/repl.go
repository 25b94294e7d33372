// Package repl is the interactive rostrum console: an auctioneer steps
// through the catalogue and the projector follows.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"auction-house/internal/adapters/cli"
	"auction-house/internal/app"
)

var errExit = errors.New("exit")

// Run reads commands from in until /exit or end of input. /next and /prev
// move the projector through the catalogue in lot order; any other slash
// command is passed to the one-shot CLI.
func Run(ctx context.Context, svc app.ApplicationService, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprintln(out, "Rostrum console")
	fmt.Fprintln(out, "Use /next and /prev to move through the lots, or /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	for {
		fmt.Fprint(out, "\n> ")
		input, readErr := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input != "" {
			err := dispatch(ctx, svc, input, out)
			if errors.Is(err, errExit) {
				fmt.Fprintln(out, "Goodbye!")
				return nil
			}
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return readErr
		}
	}
}

func dispatch(ctx context.Context, svc app.ApplicationService, input string, out io.Writer) error {
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return nil
	}
	cmd := strings.ToLower(tokens[0])

	switch cmd {
	case "exit", "quit", "q":
		return errExit
	case "help", "h":
		fmt.Fprintln(out, "  /next, /n        show the next lot")
		fmt.Fprintln(out, "  /prev, /p        show the previous lot")
		fmt.Fprintln(out, "  /exit            leave the console")
		fmt.Fprintln(out)
		fmt.Fprintln(out, cli.Usage)
		return nil
	case "next", "n":
		return step(ctx, svc, 1, out)
	case "prev", "p":
		return step(ctx, svc, -1, out)
	case "user":
		// Reading a password from the console would echo it.
		return fmt.Errorf("/user is not available in the console; use app user add")
	}
	return cli.Run(ctx, svc, append([]string{cmd}, tokens[1:]...), strings.NewReader(""), out)
}

// step shows the lot dir places away from the current one. With nothing on
// display, /next starts at the first lot and /prev at the last.
func step(ctx context.Context, svc app.ApplicationService, dir int, out io.Writer) error {
	lots, err := svc.ListLots(ctx)
	if err != nil {
		return err
	}
	if len(lots.Lots) == 0 {
		return errors.New("the catalogue is empty")
	}
	numbers := make([]int, len(lots.Lots))
	for i, l := range lots.Lots {
		numbers[i] = l.Number
	}
	sort.Ints(numbers)

	disp, err := svc.GetDisplay(ctx)
	if err != nil {
		return err
	}

	var target int
	if disp.Display.CurrentLot == nil {
		target = numbers[0]
		if dir < 0 {
			target = numbers[len(numbers)-1]
		}
	} else {
		i := sort.SearchInts(numbers, disp.Display.CurrentLot.Number)
		j := i + dir
		if dir > 0 && i < len(numbers) && numbers[i] != disp.Display.CurrentLot.Number {
			j = i
		}
		if j < 0 || j >= len(numbers) {
			return errors.New("no more lots in that direction")
		}
		target = numbers[j]
	}

	res, err := svc.ShowLot(ctx, target)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Lot %d is now on display: %s\n", res.Lot.Number, res.Lot.Title)
	if est := res.Lot.Estimate(); est != "" {
		fmt.Fprintf(out, "Estimate %s\n", est)
	}
	return nil
}
