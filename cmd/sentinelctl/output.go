package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/bcnelson/sentinelguard/internal/domain"
)

func (c *cli) printJSON(v any) error {
	encoder := json.NewEncoder(c.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// table prints rows under header unless JSON output was requested, in which
// case v is printed instead.
func (c *cli) table(v any, header string, rows func(w *tabwriter.Writer)) error {
	if c.jsonMode {
		return c.printJSON(v)
	}
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, header)
	rows(w)
	return w.Flush()
}

// outcome reports the result of a trust or enforcement operation. Warnings
// go to stderr.
func (c *cli) outcome(out domain.Outcome, done string) error {
	for _, warning := range out.Warnings {
		fmt.Fprintf(c.errOut, "Warning: %s\n", warning)
	}
	if c.jsonMode {
		return c.printJSON(out)
	}
	if !out.Changed {
		fmt.Fprintln(c.out, "No change.")
		return nil
	}
	fmt.Fprintln(c.out, done)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
