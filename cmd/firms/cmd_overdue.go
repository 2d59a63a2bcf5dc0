package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var overdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "Notify on every overdue investigation",
	Long: `Finds investigations past their deadline and notifies the owner, the team
and all admins. Every run notifies again; schedule it as often as reminders
are wanted.`,
	RunE: runOverdue,
}

func runOverdue(cmd *cobra.Command, _ []string) error {
	b, err := openBase()
	if err != nil {
		return err
	}
	defer b.close()

	svc, err := wire(cmd.Context(), b)
	if err != nil {
		return err
	}
	defer func() {
		for name, c := range svc.closers {
			if err := c.Close(); err != nil {
				b.log.Warn("Failed to close "+name, "error", err)
			}
		}
	}()

	n, err := svc.firs.NotifyOverdue(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Notified %d overdue FIR(s)\n", n)
	return nil
}
