package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/upforaride/server/internal/models"
)

func requireUser() (string, error) {
	if defaultUser == "" {
		return "", errors.New("select a user (--user or UPCTL_USER)")
	}
	if models.FindUser(models.DefaultUsers(), defaultUser) == nil {
		return "", fmt.Errorf("user not found: %s", defaultUser)
	}
	return defaultUser, nil
}

func newStartRideCmd() *cobra.Command {
	var km float64
	var participants string

	cmd := &cobra.Command{
		Use:   "start-ride",
		Short: "Start a ride at the given odometer reading",
		Long: "Starts a new ride. If another ride is still open it is closed first,\n" +
			"using this reading as its end km.",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			if km <= 0 {
				return errors.New("enter a valid km value")
			}

			var participantIDs []string
			if participants != "" {
				participantIDs = strings.Split(participants, ",")
				for i := range participantIDs {
					participantIDs[i] = strings.TrimSpace(participantIDs[i])
				}
			}

			// Warn before implicitly closing someone else's ride.
			if err := dataStore.Refresh(cmd.Context()); err == nil {
				if open := dataStore.Snapshot().OpenRide(); open != nil {
					fmt.Printf("note: closing the open ride of %s (started at km %g)\n",
						open.UserID, open.StartKm)
				}
			}

			err = dataStore.StartRide(cmd.Context(), models.CreateRideRequest{
				ID:             uuid.New().String(),
				UserID:         userID,
				ParticipantIDs: participantIDs,
				StartKm:        km,
			})
			if err != nil {
				return err
			}
			fmt.Println("Ride started successfully.")
			return nil
		},
	}

	cmd.Flags().Float64Var(&km, "km", 0, "start odometer reading")
	cmd.Flags().StringVar(&participants, "participants", "", "comma-separated participant ids (defaults to the acting user)")
	cmd.MarkFlagRequired("km")
	return cmd
}

func newStopRideCmd() *cobra.Command {
	var km, lat, lng float64

	cmd := &cobra.Command{
		Use:   "stop-ride",
		Short: "Stop your open ride at the given odometer reading",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireUser()
			if err != nil {
				return err
			}
			if km <= 0 {
				return errors.New("enter a valid km value")
			}

			if err := dataStore.Refresh(cmd.Context()); err != nil {
				return err
			}

			open := dataStore.Snapshot().OpenRide()
			if open == nil || open.UserID != userID {
				return errors.New("no open ride found for this user")
			}
			if km <= open.StartKm {
				return fmt.Errorf("end km must be greater than the ride's start km (%g)", open.StartKm)
			}

			req := models.UpdateRideRequest{EndKm: &km}
			if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
				req.EndLat = &lat
				req.EndLng = &lng
			}

			if err := dataStore.UpdateRide(cmd.Context(), open.ID, req); err != nil {
				return err
			}
			fmt.Printf("Ride stopped. Distance: %g km.\n", km-open.StartKm)
			return nil
		},
	}

	cmd.Flags().Float64Var(&km, "km", 0, "end odometer reading")
	cmd.Flags().Float64Var(&lat, "lat", 0, "end location latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "end location longitude")
	cmd.MarkFlagRequired("km")
	return cmd
}
