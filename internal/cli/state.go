package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/upforaride/server/internal/models"
	"github.com/upforaride/server/internal/settlement"
)

func newStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the current snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dataStore.Refresh(cmd.Context()); err != nil {
				return err
			}
			state := dataStore.Snapshot()

			fmt.Printf("rides: %d, costs: %d, wear payments: %d, wear rate: €%.2f/km\n",
				len(state.Rides), len(state.Costs), len(state.WearPayments),
				state.Config.WearRatePerKm)

			if open := state.OpenRide(); open != nil {
				name := open.UserID
				if u := models.FindUser(models.DefaultUsers(), open.UserID); u != nil {
					name = u.Name
				}
				fmt.Printf("open ride: %s from km %g (started %s)\n",
					name, open.StartKm, open.StartedAt.Format("2006-01-02 15:04"))
			} else {
				fmt.Println("no open ride")
			}
			return nil
		},
	}
}

func newSettleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settle",
		Short: "Show the settle-up overview",
		Long:  "Who used the car how much, and who owes what.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dataStore.Refresh(cmd.Context()); err != nil {
				return err
			}
			users := models.DefaultUsers()
			summaries := settlement.Compute(dataStore.Snapshot(), users)

			for _, s := range summaries {
				fmt.Printf("%s\n", s.Name)
				fmt.Printf("  km driven        %10.1f\n", s.Km)
				fmt.Printf("  variable paid    € %8.2f\n", s.VariablePaid)
				fmt.Printf("  fair share       € %8.2f\n", s.FairShare)
				fmt.Printf("  variable net     € %8.2f %s\n", s.VariableNet, owesLabel(s.VariableNet))
				fmt.Printf("  wear owed        € %8.2f\n", s.WearOwed)
				fmt.Printf("  wear paid        € %8.2f\n", s.WearPaid)
				fmt.Printf("  wear net         € %8.2f %s\n", s.WearNet, wearLabel(s.WearNet))
			}
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <user>",
		Short: "Show one user's statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users := models.DefaultUsers()
			user := models.FindUser(users, args[0])
			if user == nil {
				return fmt.Errorf("user not found: %s", args[0])
			}

			if err := dataStore.Refresh(cmd.Context()); err != nil {
				return err
			}
			summaries := settlement.Compute(dataStore.Snapshot(), users)

			for _, s := range summaries {
				if s.UserID != user.ID {
					continue
				}
				fmt.Printf("%s: personal statistics\n", s.Name)
				fmt.Printf("  total km driven  %10.1f\n", s.Km)
				fmt.Printf("  variable paid    € %8.2f\n", s.VariablePaid)
				fmt.Printf("  fair share       € %8.2f\n", s.FairShare)
				fmt.Printf("  variable net     € %8.2f %s\n", s.VariableNet, owesLabel(s.VariableNet))
				fmt.Printf("  wear owed        € %8.2f\n", s.WearOwed)
				fmt.Printf("  paid to reserve  € %8.2f\n", s.WearPaid)
				fmt.Printf("  net wear         € %8.2f %s\n", s.WearNet, wearLabel(s.WearNet))
			}
			return nil
		},
	}
}

func owesLabel(net float64) string {
	if net >= 0 {
		return "(others owe them)"
	}
	return "(they owe others)"
}

func wearLabel(net float64) string {
	if net >= 0 {
		return "(prepaid)"
	}
	return "(still owes)"
}
