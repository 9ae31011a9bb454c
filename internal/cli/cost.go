package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/upforaride/server/internal/models"
)

func newAddCostCmd() *cobra.Command {
	var amount float64
	var costType, description string

	cmd := &cobra.Command{
		Use:   "add-cost",
		Short: "Record a variable cost (fuel, insurance, other)",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			if amount <= 0 {
				return errors.New("enter a valid amount")
			}

			t := models.CostType(strings.ToUpper(costType))
			if !t.Valid() {
				return fmt.Errorf("unknown cost type %q (use fuel, insurance or other)", costType)
			}

			err = dataStore.AddCost(cmd.Context(), models.CreateCostRequest{
				ID:          uuid.New().String(),
				UserID:      userID,
				Amount:      amount,
				Type:        t,
				Description: description,
			})
			if err != nil {
				return err
			}
			fmt.Println("Cost recorded successfully.")
			return nil
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 0, "amount in €")
	cmd.Flags().StringVar(&costType, "type", "fuel", "cost type: fuel, insurance or other")
	cmd.Flags().StringVar(&description, "desc", "", "optional description")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func newAddWearCmd() *cobra.Command {
	var amount float64

	cmd := &cobra.Command{
		Use:   "add-wear",
		Short: "Record a payment into the wear reserve",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			if amount <= 0 {
				return errors.New("enter a valid amount")
			}

			err = dataStore.AddWearPayment(cmd.Context(), models.CreateWearPaymentRequest{
				ID:     uuid.New().String(),
				UserID: userID,
				Amount: amount,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Wear payment of €%.2f recorded for %s.\n", amount, userID)
			return nil
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 0, "amount in €")
	cmd.MarkFlagRequired("amount")
	return cmd
}
